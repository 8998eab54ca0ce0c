package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type commitSpec struct {
	tree      plumbing.Hash
	parents   []plumbing.Hash
	author    object.Signature
	committer object.Signature
	message   string
}

// treeBuilder rebuilds the nested tree objects for a flat index.
type treeBuilder struct {
	files map[string]object.TreeEntry
	dirs  map[string]*treeBuilder
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{
		files: make(map[string]object.TreeEntry),
		dirs:  make(map[string]*treeBuilder),
	}
}

func buildTreeFromIndex(s storer.EncodedObjectStorer, idx *index.Index) (plumbing.Hash, error) {
	root := newTreeBuilder()
	for _, entry := range idx.Entries {
		if entry.Stage != stageResolved {
			return plumbing.ZeroHash, fmt.Errorf("index entry %s: %w", entry.Name, domain.ErrMergeConflict)
		}
		if entry.IntentToAdd {
			continue
		}
		parts := strings.Split(entry.Name, "/")
		root.insert(parts, object.TreeEntry{
			Name: parts[len(parts)-1],
			Mode: entry.Mode,
			Hash: entry.Hash,
		})
	}

	hash, err := root.write(s)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("build tree: %w: %w", domain.ErrTreeWrite, err)
	}
	return hash, nil
}

func (b *treeBuilder) insert(parts []string, entry object.TreeEntry) {
	if len(parts) == 1 {
		b.files[parts[0]] = entry
		return
	}
	child, ok := b.dirs[parts[0]]
	if !ok {
		child = newTreeBuilder()
		b.dirs[parts[0]] = child
	}
	child.insert(parts[1:], entry)
}

func (b *treeBuilder) write(s storer.EncodedObjectStorer) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(b.files)+len(b.dirs))
	for name, child := range b.dirs {
		hash, err := child.write(s)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}
	for _, entry := range b.files {
		entries = append(entries, entry)
	}
	// git orders directories as if their name ended in '/'.
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})
	return writeTree(s, &object.Tree{Entries: entries})
}

func treeSortKey(entry object.TreeEntry) string {
	if entry.Mode == filemode.Dir {
		return entry.Name + "/"
	}
	return entry.Name
}

func writeTree(s storer.EncodedObjectStorer, tree *object.Tree) (plumbing.Hash, error) {
	obj := s.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}
	return s.SetEncodedObject(obj)
}

func (s *Store) writeCommit(ctx context.Context, root string, repo *git.Repository, spec commitSpec) (plumbing.Hash, error) {
	if !strings.HasSuffix(spec.message, "\n") {
		spec.message += "\n"
	}
	var (
		hash plumbing.Hash
		err  error
	)
	if s.options.SignCommits {
		hash, err = s.writeSignedCommit(ctx, root, spec)
	} else {
		hash, err = writeUnsignedCommit(repo.Storer, spec)
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write commit: %w: %w", domain.ErrCommitWrite, err)
	}
	return hash, nil
}

func writeUnsignedCommit(s storer.EncodedObjectStorer, spec commitSpec) (plumbing.Hash, error) {
	commit := &object.Commit{
		Author:       spec.author,
		Committer:    spec.committer,
		Message:      spec.message,
		TreeHash:     spec.tree,
		ParentHashes: spec.parents,
	}

	obj := s.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}
	return s.SetEncodedObject(obj)
}

func (s *Store) writeSignedCommit(ctx context.Context, root string, spec commitSpec) (plumbing.Hash, error) {
	args := []string{"commit-tree", spec.tree.String(), "-m", spec.message}
	for _, parent := range spec.parents {
		args = append(args, "-p", parent.String())
	}
	if s.options.SignKey != "" {
		args = append(args, "-S"+s.options.SignKey)
	} else {
		args = append(args, "-S")
	}

	env := []string{
		"GIT_AUTHOR_NAME=" + spec.author.Name,
		"GIT_AUTHOR_EMAIL=" + spec.author.Email,
		"GIT_AUTHOR_DATE=" + gitDate(spec.author.When),
		"GIT_COMMITTER_NAME=" + spec.committer.Name,
		"GIT_COMMITTER_EMAIL=" + spec.committer.Email,
		"GIT_COMMITTER_DATE=" + gitDate(spec.committer.When),
	}
	out, err := s.runGit(ctx, root, env, args...)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if !plumbing.IsHash(out) {
		return plumbing.ZeroHash, fmt.Errorf("git commit-tree returned %q", out)
	}
	return plumbing.NewHash(out), nil
}

func gitDate(when time.Time) string {
	return fmt.Sprintf("%d %s", when.Unix(), when.Format("-0700"))
}

// headTarget returns the reference a new commit must move: the branch HEAD
// points at, or HEAD itself when detached. The current value is nil for an
// unborn branch.
func headTarget(repo *git.Repository) (plumbing.ReferenceName, *plumbing.Reference, error) {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", nil, fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() == plumbing.HashReference {
		return plumbing.HEAD, head, nil
	}

	name := head.Target()
	ref, err := repo.Storer.Reference(name)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return name, nil, nil
		}
		return "", nil, fmt.Errorf("resolve %s: %w", name, err)
	}
	return name, ref, nil
}

func advanceRef(repo *git.Repository, name plumbing.ReferenceName, base *plumbing.Reference, hash plumbing.Hash) error {
	var old *plumbing.Reference
	if base != nil {
		old = plumbing.NewHashReference(name, base.Hash())
	}
	if err := repo.Storer.CheckAndSetReference(plumbing.NewHashReference(name, hash), old); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			return fmt.Errorf("update %s: %w: %w", name, domain.ErrCommitWrite, err)
		}
		return fmt.Errorf("update %s: %w", name, err)
	}
	return nil
}

func newSignature(name, email string, when time.Time) (object.Signature, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return object.Signature{}, fmt.Errorf("author name and email are required: %w", domain.ErrSignature)
	}
	if strings.ContainsAny(name, "<>\n") || strings.ContainsAny(email, "<>\n") {
		return object.Signature{}, fmt.Errorf("author %q <%s>: %w", name, email, domain.ErrSignature)
	}
	return object.Signature{Name: name, Email: email, When: when}, nil
}

// configSignature reads user.name and user.email, local config first.
func configSignature(repo *git.Repository, when time.Time) (object.Signature, error) {
	cfg, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return object.Signature{}, fmt.Errorf("read git config: %w", err)
	}
	sig, err := newSignature(cfg.User.Name, cfg.User.Email, when)
	if err != nil {
		return object.Signature{}, fmt.Errorf("%w: %w", domain.ErrNoIdentity, domain.ErrSignature)
	}
	return sig, nil
}
