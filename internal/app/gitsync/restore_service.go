package gitsync

import (
	"context"

	"github.com/osvaldoandrade/wikisync/internal/app/paths"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type RestoreService struct {
	restorer Restorer
}

func NewRestoreService(restorer Restorer) *RestoreService {
	return &RestoreService{restorer: restorer}
}

func (s *RestoreService) Restore(ctx context.Context, root string, req domain.RestoreRequest) error {
	files, err := paths.ResolveVolumePaths(root, req.Files)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}
	return s.restorer.Restore(ctx, root, files)
}
