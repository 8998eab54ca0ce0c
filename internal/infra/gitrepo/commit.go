package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// Commit stages exactly req.Files (additions, edits and deletions) and
// records the whole index as a new commit on HEAD. When a merge is waiting
// for manual resolution the commit concludes it with MERGE_HEAD as second
// parent.
func (s *Store) Commit(ctx context.Context, root string, req domain.CommitRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	author, err := newSignature(req.AuthorName, req.AuthorEmail, time.Now())
	if err != nil {
		return "", err
	}

	repo, wt, err := s.openWorktree(root)
	if err != nil {
		return "", err
	}

	if err := stagePaths(repo, wt, req.Files); err != nil {
		return "", err
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("read index: %w: %w", domain.ErrIndexWrite, err)
	}
	if conflicts := unmergedEntries(idx); len(conflicts) > 0 {
		return "", fmt.Errorf("commit with unresolved paths %s: %w", strings.Join(conflicts, ", "), domain.ErrMergeConflict)
	}

	tree, err := buildTreeFromIndex(repo.Storer, idx)
	if err != nil {
		return "", err
	}

	refName, base, err := headTarget(repo)
	if err != nil {
		return "", err
	}
	var parents []plumbing.Hash
	if base != nil {
		parents = append(parents, base.Hash())
	}
	mergeHead, merging, err := readMergeHead(repo)
	if err != nil {
		return "", err
	}
	if merging {
		parents = append(parents, mergeHead)
	}

	hash, err := s.writeCommit(ctx, root, repo, commitSpec{
		tree:      tree,
		parents:   parents,
		author:    author,
		committer: author,
		message:   req.Message,
	})
	if err != nil {
		return "", err
	}
	if err := advanceRef(repo, refName, base, hash); err != nil {
		return "", err
	}
	if merging {
		if err := clearMergeState(repo); err != nil {
			return "", err
		}
	}
	return hash.String(), nil
}

func stagePaths(repo *git.Repository, wt *git.Worktree, files []string) error {
	if err := dropConflictStages(repo, files); err != nil {
		return err
	}
	for _, file := range files {
		if _, err := wt.Add(file); err != nil {
			if errors.Is(err, index.ErrEntryNotFound) {
				return fmt.Errorf("stage %s: %w", file, domain.ErrPathNotFound)
			}
			return fmt.Errorf("stage %s: %w: %w", file, domain.ErrIndexWrite, err)
		}
	}
	return nil
}

// dropConflictStages marks the listed paths as resolved so the next add
// writes a single stage 0 entry for each.
func dropConflictStages(repo *git.Repository, files []string) error {
	idx, err := repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("read index: %w: %w", domain.ErrIndexWrite, err)
	}

	kept := idx.Entries[:0]
	changed := false
	for _, entry := range idx.Entries {
		if entry.Stage != stageResolved && coversPath(files, entry.Name) {
			changed = true
			continue
		}
		kept = append(kept, entry)
	}
	if !changed {
		return nil
	}
	idx.Entries = kept
	if err := repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("write index: %w: %w", domain.ErrIndexWrite, err)
	}
	return nil
}

func coversPath(prefixes []string, name string) bool {
	for _, prefix := range prefixes {
		if name == prefix || strings.HasPrefix(name, prefix+"/") {
			return true
		}
	}
	return false
}
