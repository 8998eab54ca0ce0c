package gitsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/osvaldoandrade/wikisync/internal/app/paths"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type CommitService struct {
	committer Committer
}

func NewCommitService(committer Committer) *CommitService {
	return &CommitService{committer: committer}
}

func (s *CommitService) Commit(ctx context.Context, root string, req domain.CommitRequest) (domain.CommitResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return domain.CommitResult{}, ErrCommitMessageRequired
	}
	if strings.TrimSpace(req.AuthorName) == "" || strings.TrimSpace(req.AuthorEmail) == "" {
		return domain.CommitResult{}, fmt.Errorf("author name and email are required: %w", domain.ErrSignature)
	}

	files, err := paths.ResolveVolumePaths(root, req.Files)
	if err != nil {
		return domain.CommitResult{}, err
	}
	if len(files) == 0 {
		return domain.CommitResult{}, ErrNoFilesToCommit
	}
	req.Files = files

	hash, err := s.committer.Commit(ctx, root, req)
	if err != nil {
		return domain.CommitResult{}, err
	}
	return domain.CommitResult{Commit: hash}, nil
}
