package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func newTestStore() *Store {
	return NewStoreWithOptions(StoreOptions{Credentials: Credentials{Token: testToken}})
}

func initVolume(t *testing.T, store *Store) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "volume")
	require.NoError(t, store.Init(context.Background(), root, "main"))
	setIdentity(t, root)
	return root
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

// initRemote creates a bare repository with HEAD on main.
func initRemote(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote.git")
	_, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		Bare:        true,
		InitOptions: git.InitOptions{DefaultBranch: "refs/heads/main"},
	})
	require.NoError(t, err)
	return dir
}

// linkRemote points origin at remote and tracks origin/main.
func linkRemote(t *testing.T, store *Store, root, remote string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SetRemote(ctx, root, "origin", remote))
	require.NoError(t, store.SetUpstream(ctx, root, "main", "origin"))
}

func cloneVolume(t *testing.T, store *Store, remote string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, store.Clone(context.Background(), remote, root))
	setIdentity(t, root)
	return root
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func commitFiles(t *testing.T, store *Store, root, message string, files ...string) string {
	t.Helper()
	hash, err := store.Commit(context.Background(), root, domain.CommitRequest{
		Message:     message,
		Files:       files,
		AuthorName:  "Alice",
		AuthorEmail: "alice@example.com",
	})
	require.NoError(t, err)
	return hash
}

func statusOf(report domain.SyncReport) map[string]domain.ChangeKind {
	out := make(map[string]domain.ChangeKind, len(report.Files))
	for _, file := range report.Files {
		out[file.Path] = file.Status
	}
	return out
}

func gitCmd(t *testing.T, root string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}
