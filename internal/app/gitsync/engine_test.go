package gitsync

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/osvaldoandrade/wikisync/internal/app/volume"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/infra/gitrepo"
	"github.com/stretchr/testify/require"
)

type fakeJournal struct {
	volume string
	limit  int
}

func (f *fakeJournal) List(ctx context.Context, volume string, limit int) ([]domain.JournalEntry, error) {
	f.volume = volume
	f.limit = limit
	return []domain.JournalEntry{{ID: "01", Volume: volume, Operation: domain.OpCommit}}, nil
}

type fixture struct {
	engine *Engine
	store  *gitrepo.Store
	roots  map[string]string
	remote string
}

func newFixture(t *testing.T, journal JournalReader, names ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := gitrepo.NewStoreWithOptions(gitrepo.StoreOptions{Credentials: gitrepo.Credentials{Token: "test-token"}})

	f := &fixture{store: store, roots: make(map[string]string)}
	volumes := make([]domain.Volume, 0, len(names))
	for _, name := range names {
		root := filepath.Join(t.TempDir(), name)
		require.NoError(t, store.Init(ctx, root, "main"))
		setIdentity(t, root)
		f.roots[name] = root
		volumes = append(volumes, domain.Volume{Name: name, Root: root})
	}

	registry, err := volume.NewRegistry(ctx, volumes, store, volume.Options{PoolSize: 4})
	require.NoError(t, err)
	f.engine = NewEngine(registry, store, journal)
	return f
}

func setIdentity(t *testing.T, root string) {
	t.Helper()
	repo, err := git.PlainOpen(root)
	require.NoError(t, err)
	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Wiki Bot"
	cfg.User.Email = "bot@wiki.local"
	require.NoError(t, repo.SetConfig(cfg))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func (f *fixture) write(t *testing.T, name, file, content string) {
	t.Helper()
	full := filepath.Join(f.roots[name], filepath.FromSlash(file))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func (f *fixture) commit(t *testing.T, name, message string, files ...string) string {
	t.Helper()
	result, err := f.engine.Commit(context.Background(), name, domain.CommitRequest{
		Message:     message,
		Files:       files,
		AuthorName:  "Alice",
		AuthorEmail: "alice@example.com",
	})
	require.NoError(t, err)
	return result.Commit
}

// share publishes the first volume to a bare remote and clones it as
// every other volume.
func (f *fixture) share(t *testing.T, first string, others ...string) {
	t.Helper()
	ctx := context.Background()
	remote := filepath.Join(t.TempDir(), "remote.git")
	_, err := git.PlainInitWithOptions(remote, &git.PlainInitOptions{
		Bare:        true,
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	f.remote = remote

	require.NoError(t, f.store.SetRemote(ctx, f.roots[first], "origin", remote))
	require.NoError(t, f.store.SetUpstream(ctx, f.roots[first], "main", "origin"))
	require.NoError(t, f.engine.Push(ctx, first))

	for _, name := range others {
		root := f.roots[name]
		require.NoError(t, os.RemoveAll(root))
		require.NoError(t, f.store.Clone(ctx, remote, root))
		setIdentity(t, root)
	}
}

func TestScenarioNewFileCommitThenClean(t *testing.T) {
	f := newFixture(t, nil, "notes")
	ctx := context.Background()

	f.write(t, "notes", "test.md", "# Test\n")
	report, err := f.engine.Status(ctx, "notes")
	require.NoError(t, err)
	require.Equal(t, []domain.FileStatus{{Path: "test.md", Status: domain.ChangeNew}}, report.Files)

	f.commit(t, "notes", "First commit", "test.md")

	report, err = f.engine.Status(ctx, "notes")
	require.NoError(t, err)
	require.Empty(t, report.Files)
	require.NotNil(t, report.Files)
}

func TestCommitSymlinkInsideVolume(t *testing.T) {
	f := newFixture(t, nil, "notes")
	ctx := context.Background()
	root := f.roots["notes"]

	f.write(t, "notes", "real.md", "# Real\n")
	if err := os.Symlink("real.md", filepath.Join(root, "link.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	hash := f.commit(t, "notes", "Add link", "real.md", "link.md")

	repo, err := git.PlainOpen(root)
	require.NoError(t, err)
	commit, err := repo.CommitObject(plumbing.NewHash(hash))
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)
	entry, err := tree.FindEntry("link.md")
	require.NoError(t, err)
	require.Equal(t, filemode.Symlink, entry.Mode)

	report, err := f.engine.Status(ctx, "notes")
	require.NoError(t, err)
	require.Empty(t, report.Files)
}

func TestScenarioRestoreModifiedFile(t *testing.T) {
	f := newFixture(t, nil, "notes")
	ctx := context.Background()

	f.write(t, "notes", "page.md", "v1\n")
	f.commit(t, "notes", "seed", "page.md")
	f.write(t, "notes", "page.md", "v2\n")

	report, err := f.engine.Status(ctx, "notes")
	require.NoError(t, err)
	require.Equal(t, []domain.FileStatus{{Path: "page.md", Status: domain.ChangeModified}}, report.Files)

	require.NoError(t, f.engine.Restore(ctx, "notes", domain.RestoreRequest{Files: []string{"page.md"}}))

	report, err = f.engine.Status(ctx, "notes")
	require.NoError(t, err)
	require.Empty(t, report.Files)
	data, err := os.ReadFile(filepath.Join(f.roots["notes"], "page.md"))
	require.NoError(t, err)
	require.Equal(t, "v1\n", string(data))
}

func TestScenarioAheadAfterLocalCommit(t *testing.T) {
	requireGit(t)
	f := newFixture(t, nil, "notes")
	ctx := context.Background()

	f.write(t, "notes", "home.md", "home\n")
	f.commit(t, "notes", "seed", "home.md")
	f.share(t, "notes")

	report, err := f.engine.Fetch(ctx, "notes")
	require.NoError(t, err)
	require.Zero(t, report.CommitsAhead)

	f.write(t, "notes", "home.md", "home v2\n")
	f.commit(t, "notes", "edit", "home.md")

	report, err = f.engine.Status(ctx, "notes")
	require.NoError(t, err)
	require.Equal(t, 1, report.CommitsAhead)
	require.Zero(t, report.CommitsBehind)
}

func TestScenarioPullFastForward(t *testing.T) {
	requireGit(t)
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()

	f.write(t, "alice", "home.md", "home\n")
	f.commit(t, "alice", "seed", "home.md")
	f.share(t, "alice", "bob")

	f.write(t, "bob", "bob.md", "bob\n")
	tip := f.commit(t, "bob", "bob page", "bob.md")
	require.NoError(t, f.engine.Push(ctx, "bob"))

	result, err := f.engine.Pull(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.PullFastForward, result.Outcome)
	require.Equal(t, tip, result.Head)

	result, err = f.engine.Pull(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.PullUpToDate, result.Outcome)
}

func TestScenarioPullDisjointChangesMerges(t *testing.T) {
	requireGit(t)
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()

	f.write(t, "alice", "home.md", "home\n")
	f.commit(t, "alice", "seed", "home.md")
	f.share(t, "alice", "bob")

	f.write(t, "bob", "bob.md", "bob\n")
	f.commit(t, "bob", "bob page", "bob.md")
	require.NoError(t, f.engine.Push(ctx, "bob"))

	f.write(t, "alice", "alice.md", "alice\n")
	f.commit(t, "alice", "alice page", "alice.md")

	result, err := f.engine.Pull(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.PullMerged, result.Outcome)

	repo, err := git.PlainOpen(f.roots["alice"])
	require.NoError(t, err)
	commit, err := repo.CommitObject(plumbing.NewHash(result.Head))
	require.NoError(t, err)
	require.Len(t, commit.ParentHashes, 2)
	require.Equal(t, "Merge remote-tracking branch 'origin/main'\n", commit.Message)

	report, err := f.engine.Status(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, report.Files)
	require.Zero(t, report.CommitsBehind)

	require.NoError(t, f.engine.Push(ctx, "alice"))
}

func TestScenarioPullSameFileConflict(t *testing.T) {
	requireGit(t)
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()

	f.write(t, "alice", "home.md", "home\n")
	f.commit(t, "alice", "seed", "home.md")
	f.share(t, "alice", "bob")

	f.write(t, "bob", "home.md", "bob's home\n")
	f.commit(t, "bob", "bob edit", "home.md")
	require.NoError(t, f.engine.Push(ctx, "bob"))

	f.write(t, "alice", "home.md", "alice's home\n")
	f.commit(t, "alice", "alice edit", "home.md")

	_, err := f.engine.Pull(ctx, "alice")
	require.True(t, errors.Is(err, domain.ErrMergeConflict), "got %v", err)
	require.Contains(t, err.Error(), "manual resolution required")

	data, err := os.ReadFile(filepath.Join(f.roots["alice"], "home.md"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "<<<<<<<"))

	err = f.engine.Push(ctx, "alice")
	require.True(t, errors.Is(err, domain.ErrNonFastForward), "got %v", err)

	require.NoError(t, f.engine.AbortMerge(ctx, "alice"))
	data, err = os.ReadFile(filepath.Join(f.roots["alice"], "home.md"))
	require.NoError(t, err)
	require.Equal(t, "alice's home\n", string(data))
}

func TestEngineUnknownVolume(t *testing.T) {
	f := newFixture(t, nil, "notes")
	_, err := f.engine.Status(context.Background(), "missing")
	require.True(t, errors.Is(err, domain.ErrVolumeNotFound), "got %v", err)

	_, err = f.engine.History(context.Background(), "missing", 10)
	require.True(t, errors.Is(err, domain.ErrVolumeNotFound), "got %v", err)
}

func TestEngineHistory(t *testing.T) {
	journal := &fakeJournal{}
	f := newFixture(t, journal, "notes")

	entries, err := f.engine.History(context.Background(), "notes", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "notes", journal.volume)
	require.Equal(t, DefaultHistoryLimit, journal.limit)

	empty := newFixture(t, nil, "docs")
	entries, err = empty.engine.History(context.Background(), "docs", 5)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestEngineVolumesFailClosed(t *testing.T) {
	store := gitrepo.NewStore()
	registry, err := volume.NewRegistry(context.Background(), []domain.Volume{
		{Name: "broken", Root: t.TempDir()},
	}, store, volume.Options{})
	require.NoError(t, err)
	engine := NewEngine(registry, store, nil)

	infos := engine.Volumes()
	require.Len(t, infos, 1)
	require.False(t, infos[0].Available)

	_, err = engine.Status(context.Background(), "broken")
	require.True(t, errors.Is(err, domain.ErrVolumeUnavailable), "got %v", err)
	require.True(t, errors.Is(err, domain.ErrNotARepository), "got %v", err)
}
