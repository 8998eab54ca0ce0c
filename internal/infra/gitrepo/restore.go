package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// Restore resets the index entry and working tree content of each path to
// HEAD. Staged paths HEAD does not know are removed from both; untracked
// paths are refused with ErrPathNotFound.
func (s *Store) Restore(ctx context.Context, root string, files []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	repo, wt, err := s.openWorktree(root)
	if err != nil {
		return err
	}

	_, base, err := headTarget(repo)
	if err != nil {
		return err
	}
	if base == nil {
		return fmt.Errorf("restore: %w", domain.ErrNoHead)
	}
	commit, err := repo.CommitObject(base.Hash())
	if err != nil {
		return fmt.Errorf("load HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("load HEAD tree: %w", err)
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("read index: %w: %w", domain.ErrIndexWrite, err)
	}

	// Resolve every path before touching the worktree so an unknown path
	// leaves the volume unchanged.
	targets := make([]map[string]*object.File, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		found, err := headFiles(tree, file)
		if err != nil {
			return err
		}
		if len(found) == 0 && !indexCovers(idx, file) {
			return fmt.Errorf("restore %s: %w", file, domain.ErrPathNotFound)
		}
		targets[i] = found
	}

	for i, file := range files {
		for _, name := range removeIndexPaths(idx, file, targets[i]) {
			if err := removeWorktreeFile(wt.Filesystem, name); err != nil {
				return err
			}
		}
		for name, f := range targets[i] {
			if err := checkoutFile(wt.Filesystem, idx, name, f); err != nil {
				return err
			}
		}
	}

	if err := repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("write index: %w: %w", domain.ErrIndexWrite, err)
	}
	return nil
}

// headFiles lists the blobs HEAD holds at p: one file, every file of a
// directory, or nothing.
func headFiles(tree *object.Tree, p string) (map[string]*object.File, error) {
	entry, err := tree.FindEntry(p)
	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("look up %s in HEAD: %w", p, err)
	}

	files := make(map[string]*object.File)
	switch entry.Mode {
	case filemode.Submodule:
		return files, nil
	case filemode.Dir:
		sub, err := tree.Tree(p)
		if err != nil {
			return nil, fmt.Errorf("load tree %s: %w", p, err)
		}
		err = sub.Files().ForEach(func(f *object.File) error {
			files[path.Join(p, f.Name)] = f
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk tree %s: %w", p, err)
		}
		return files, nil
	default:
		f, err := tree.TreeEntryFile(entry)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		files[p] = f
		return files, nil
	}
}

// removeIndexPaths drops every entry at or below p that HEAD does not keep,
// including conflict stages, and returns the removed names once each.
func removeIndexPaths(idx *index.Index, p string, keep map[string]*object.File) []string {
	removed := make([]string, 0)
	seen := make(map[string]struct{})
	kept := idx.Entries[:0]
	for _, entry := range idx.Entries {
		if !coversPath([]string{p}, entry.Name) {
			kept = append(kept, entry)
			continue
		}
		_, inHead := keep[entry.Name]
		if inHead && entry.Stage == stageResolved {
			kept = append(kept, entry)
			continue
		}
		if _, ok := seen[entry.Name]; !inHead && !ok {
			seen[entry.Name] = struct{}{}
			removed = append(removed, entry.Name)
		}
	}
	idx.Entries = kept
	return removed
}

func indexCovers(idx *index.Index, p string) bool {
	for _, entry := range idx.Entries {
		if coversPath([]string{p}, entry.Name) {
			return true
		}
	}
	return false
}

func checkoutFile(fs billy.Filesystem, idx *index.Index, name string, f *object.File) error {
	reader, err := f.Reader()
	if err != nil {
		return fmt.Errorf("read blob %s: %w", name, err)
	}
	defer reader.Close()

	if err := fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", name, err)
	}

	if f.Mode == filemode.Symlink {
		target, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("read link %s: %w", name, err)
		}
		if err := util.RemoveAll(fs, name); err != nil {
			return fmt.Errorf("replace %s: %w", name, err)
		}
		if err := fs.Symlink(string(target), name); err != nil {
			return fmt.Errorf("restore link %s: %w", name, err)
		}
	} else {
		perm := os.FileMode(0o644)
		if f.Mode == filemode.Executable {
			perm = 0o755
		}
		out, err := fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		if _, err := io.Copy(out, reader); err != nil {
			_ = out.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	info, err := fs.Lstat(name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	entry, err := idx.Entry(name)
	if err != nil {
		entry = idx.Add(name)
	}
	entry.Hash = f.Hash
	entry.Mode = f.Mode
	entry.Size = uint32(info.Size())
	entry.ModifiedAt = info.ModTime()
	entry.Stage = stageResolved
	return nil
}

func removeWorktreeFile(fs billy.Filesystem, name string) error {
	if err := fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	// Drop parent directories the removal left empty.
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if err := fs.Remove(dir); err != nil {
			break
		}
	}
	return nil
}
