package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type PullService struct {
	store MergeStore
}

func NewPullService(store MergeStore) *PullService {
	return &PullService{store: store}
}

func MergeMessage(upstream string) string {
	return fmt.Sprintf("Merge remote-tracking branch '%s'", upstream)
}

// Pull fetches origin and integrates the upstream tip into the current
// branch: nothing when HEAD already contains it, a fast-forward when HEAD is
// behind, otherwise a merge commit. Conflicts are left for manual resolution.
func (s *PullService) Pull(ctx context.Context, root string) (domain.PullResult, error) {
	if err := s.store.Fetch(ctx, root); err != nil {
		return domain.PullResult{}, err
	}

	tracking, err := s.store.LoadTracking(ctx, root)
	if err != nil {
		return domain.PullResult{}, err
	}
	if tracking.Detached() {
		return domain.PullResult{}, fmt.Errorf("pull: %w", domain.ErrDetachedHead)
	}

	analysis, err := s.store.AnalyzeMerge(ctx, root, tracking)
	if err != nil {
		return domain.PullResult{}, err
	}

	switch analysis {
	case domain.MergeUpToDate:
		return domain.PullResult{Outcome: domain.PullUpToDate, Head: tracking.Head}, nil
	case domain.MergeFastForward:
		if err := s.store.FastForward(ctx, root, tracking); err != nil {
			return domain.PullResult{}, err
		}
		return domain.PullResult{Outcome: domain.PullFastForward, Head: tracking.Tip}, nil
	case domain.MergeNormal:
		return s.merge(ctx, root, tracking)
	default:
		return domain.PullResult{}, fmt.Errorf("pull %s: %w", tracking.Upstream, domain.ErrUnsupportedMerge)
	}
}

func (s *PullService) merge(ctx context.Context, root string, tracking domain.Tracking) (domain.PullResult, error) {
	conflicts, err := s.store.Merge(ctx, root, tracking)
	if err != nil {
		return domain.PullResult{}, err
	}
	if len(conflicts) > 0 {
		return domain.PullResult{}, fmt.Errorf("pull %s: %s: %w", tracking.Upstream, strings.Join(conflicts, ", "), domain.ErrMergeConflict)
	}

	hash, err := s.store.CommitMerge(ctx, root, tracking, MergeMessage(tracking.Upstream))
	if err != nil {
		if abortErr := s.store.AbortMerge(ctx, root); abortErr != nil {
			slog.Warn("abort merge failed", "root", root, "err", abortErr)
		}
		return domain.PullResult{}, err
	}
	return domain.PullResult{Outcome: domain.PullMerged, Head: hash}, nil
}

// AbortMerge discards an in-progress merge left behind by a conflicted pull.
func (s *PullService) AbortMerge(ctx context.Context, root string) error {
	return s.store.AbortMerge(ctx, root)
}
