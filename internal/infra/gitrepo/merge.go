package gitrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// AnalyzeMerge decides how HEAD relates to the fetched upstream tip.
func (s *Store) AnalyzeMerge(ctx context.Context, root string, t domain.Tracking) (domain.MergeAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return domain.MergeUnsupported, err
	}
	if t.Tip == "" {
		return domain.MergeUnsupported, fmt.Errorf("analyze %s: %w", t.Upstream, domain.ErrNoUpstream)
	}
	if t.Head == "" {
		return domain.MergeFastForward, nil
	}
	if t.Head == t.Tip {
		return domain.MergeUpToDate, nil
	}

	repo, err := s.open(root)
	if err != nil {
		return domain.MergeUnsupported, err
	}
	head, err := repo.CommitObject(plumbing.NewHash(t.Head))
	if err != nil {
		return domain.MergeUnsupported, fmt.Errorf("load HEAD commit: %w", err)
	}
	tip, err := repo.CommitObject(plumbing.NewHash(t.Tip))
	if err != nil {
		return domain.MergeUnsupported, fmt.Errorf("load %s commit: %w", t.Upstream, err)
	}

	if ok, err := tip.IsAncestor(head); err != nil {
		return domain.MergeUnsupported, fmt.Errorf("compare histories: %w", err)
	} else if ok {
		return domain.MergeUpToDate, nil
	}
	if ok, err := head.IsAncestor(tip); err != nil {
		return domain.MergeUnsupported, fmt.Errorf("compare histories: %w", err)
	} else if ok {
		return domain.MergeFastForward, nil
	}

	bases, err := head.MergeBase(tip)
	if err != nil {
		return domain.MergeUnsupported, fmt.Errorf("find merge base: %w", err)
	}
	if len(bases) == 0 {
		return domain.MergeUnsupported, nil
	}
	return domain.MergeNormal, nil
}

// FastForward moves the branch to the upstream tip and hard-resets the
// working tree onto it. Uncommitted edits to tracked files are discarded.
func (s *Store) FastForward(ctx context.Context, root string, t domain.Tracking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.Detached() {
		return fmt.Errorf("fast-forward: %w", domain.ErrDetachedHead)
	}

	repo, wt, err := s.openWorktree(root)
	if err != nil {
		return err
	}

	branch := plumbing.NewBranchReferenceName(t.Branch)
	var base *plumbing.Reference
	if t.Head != "" {
		base = plumbing.NewHashReference(branch, plumbing.NewHash(t.Head))
	}
	tip := plumbing.NewHash(t.Tip)
	if err := advanceRef(repo, branch, base, tip); err != nil {
		return err
	}
	if err := wt.Reset(&git.ResetOptions{Commit: tip, Mode: git.HardReset}); err != nil {
		return fmt.Errorf("reset worktree to %s: %w", tip, err)
	}
	return nil
}

// Merge performs the three-way content merge of the upstream tip into the
// index and working tree without committing. It returns the conflicted
// paths; on conflict the merge state stays in place for manual resolution.
func (s *Store) Merge(ctx context.Context, root string, t domain.Tracking) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.Tip == "" {
		return nil, fmt.Errorf("merge %s: %w", t.Upstream, domain.ErrNoUpstream)
	}

	_, runErr := s.runGit(ctx, root, nil, "merge", "--no-ff", "--no-commit", "--no-stat", t.Tip)

	repo, err := s.open(root)
	if err != nil {
		return nil, err
	}
	conflicts, err := unmergedPaths(repo)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}
	if runErr != nil {
		return nil, fmt.Errorf("merge %s: %w: %w", t.Upstream, domain.ErrMergeFailed, runErr)
	}
	return nil, nil
}

// CommitMerge records the merged index as a two parent commit authored by
// the repository's configured identity, then clears the merge state.
func (s *Store) CommitMerge(ctx context.Context, root string, t domain.Tracking, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.Detached() || t.Head == "" || t.Tip == "" {
		return "", fmt.Errorf("commit merge: %w", domain.ErrDetachedHead)
	}

	repo, err := s.open(root)
	if err != nil {
		return "", err
	}

	sig, err := configSignature(repo, time.Now())
	if err != nil {
		return "", err
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("read index: %w: %w", domain.ErrIndexWrite, err)
	}
	if conflicts := unmergedEntries(idx); len(conflicts) > 0 {
		return "", fmt.Errorf("commit merge with %s: %w", strings.Join(conflicts, ", "), domain.ErrMergeConflict)
	}
	tree, err := buildTreeFromIndex(repo.Storer, idx)
	if err != nil {
		return "", err
	}

	branch := plumbing.NewBranchReferenceName(t.Branch)
	head := plumbing.NewHash(t.Head)
	hash, err := s.writeCommit(ctx, root, repo, commitSpec{
		tree:      tree,
		parents:   []plumbing.Hash{head, plumbing.NewHash(t.Tip)},
		author:    sig,
		committer: sig,
		message:   message,
	})
	if err != nil {
		return "", err
	}
	if err := advanceRef(repo, branch, plumbing.NewHashReference(branch, head), hash); err != nil {
		return "", err
	}
	if err := clearMergeState(repo); err != nil {
		return "", err
	}
	return hash.String(), nil
}

// AbortMerge restores HEAD's tree after a failed merge attempt.
func (s *Store) AbortMerge(ctx context.Context, root string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo, err := s.open(root)
	if err != nil {
		return err
	}
	if _, merging, err := readMergeHead(repo); err != nil || !merging {
		return err
	}
	if _, err := s.runGit(ctx, root, nil, "merge", "--abort"); err != nil {
		return fmt.Errorf("abort merge: %w", err)
	}
	return nil
}
