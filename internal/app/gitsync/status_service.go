package gitsync

import (
	"context"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type StatusService struct {
	store StatusStore
}

func NewStatusService(store StatusStore) *StatusService {
	return &StatusService{store: store}
}

func (s *StatusService) Status(ctx context.Context, root string) (domain.SyncReport, error) {
	report, err := s.store.LoadReport(ctx, root)
	if err != nil {
		return domain.SyncReport{}, err
	}
	if report.Files == nil {
		report.Files = []domain.FileStatus{}
	}
	return report, nil
}
