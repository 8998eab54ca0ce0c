package gitsync

import (
	"context"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type FetchService struct {
	fetcher Fetcher
	status  *StatusService
}

func NewFetchService(fetcher Fetcher, store StatusStore) *FetchService {
	return &FetchService{fetcher: fetcher, status: NewStatusService(store)}
}

// Fetch downloads origin's refs and reports the refreshed distance to the
// upstream.
func (s *FetchService) Fetch(ctx context.Context, root string) (domain.SyncReport, error) {
	if err := s.fetcher.Fetch(ctx, root); err != nil {
		return domain.SyncReport{}, err
	}
	return s.status.Status(ctx, root)
}
