package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// LoadTracking resolves HEAD and the reference a pull merges from. Without
// a configured upstream it falls back to refs/remotes/origin/<branch>.
func (s *Store) LoadTracking(ctx context.Context, root string) (domain.Tracking, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tracking{}, err
	}

	repo, err := s.open(root)
	if err != nil {
		return domain.Tracking{}, err
	}
	return loadTracking(repo, true)
}

func loadTracking(repo *git.Repository, fallback bool) (domain.Tracking, error) {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return domain.Tracking{}, fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() == plumbing.HashReference {
		return domain.Tracking{Head: head.Hash().String()}, nil
	}

	branchRef := head.Target()
	if !branchRef.IsBranch() {
		return domain.Tracking{}, fmt.Errorf("HEAD points at %s: %w", branchRef, domain.ErrDetachedHead)
	}

	tracking := domain.Tracking{Branch: branchRef.Short()}
	ref, err := repo.Reference(branchRef, true)
	switch {
	case err == nil:
		tracking.Head = ref.Hash().String()
	case errors.Is(err, plumbing.ErrReferenceNotFound):
	default:
		return domain.Tracking{}, fmt.Errorf("resolve %s: %w", branchRef, err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return domain.Tracking{}, fmt.Errorf("read git config: %w", err)
	}

	upstreamRef, configured := upstreamFor(cfg, tracking.Branch)
	if !configured {
		if !fallback {
			return tracking, nil
		}
		upstreamRef = plumbing.NewRemoteReferenceName(domain.DefaultRemote, tracking.Branch)
	}
	tracking.Configured = configured
	tracking.UpstreamRef = upstreamRef.String()
	tracking.Upstream = upstreamRef.Short()

	tip, err := repo.Reference(upstreamRef, true)
	switch {
	case err == nil:
		tracking.Tip = tip.Hash().String()
	case errors.Is(err, plumbing.ErrReferenceNotFound):
	default:
		return domain.Tracking{}, fmt.Errorf("resolve %s: %w", upstreamRef, err)
	}
	return tracking, nil
}

// upstreamFor maps branch.<name>.remote/merge through the remote's fetch
// refspecs to the local remote-tracking reference.
func upstreamFor(cfg *config.Config, branch string) (plumbing.ReferenceName, bool) {
	b, ok := cfg.Branches[branch]
	if !ok || b == nil || b.Remote == "" || b.Merge == "" {
		return "", false
	}
	if b.Remote == "." {
		return b.Merge, true
	}
	if rc, ok := cfg.Remotes[b.Remote]; ok && rc != nil {
		for _, rs := range rc.Fetch {
			if rs.Match(b.Merge) {
				return rs.Dst(b.Merge), true
			}
		}
	}
	return plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short()), true
}

func aheadBehind(repo *git.Repository, local, upstream plumbing.Hash) (int, int, error) {
	if local == upstream {
		return 0, 0, nil
	}

	localSet, err := ancestry(repo, local)
	if err != nil {
		return 0, 0, err
	}
	upstreamSet, err := ancestry(repo, upstream)
	if err != nil {
		return 0, 0, err
	}

	ahead := 0
	for hash := range localSet {
		if !upstreamSet[hash] {
			ahead++
		}
	}
	behind := 0
	for hash := range upstreamSet {
		if !localSet[hash] {
			behind++
		}
	}
	return ahead, behind, nil
}

func ancestry(repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	commit, err := repo.CommitObject(from)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", from, err)
	}

	seen := make(map[plumbing.Hash]bool)
	iter := object.NewCommitPreorderIter(commit, nil, nil)
	defer iter.Close()
	if err := iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk history from %s: %w", from, err)
	}
	return seen, nil
}
