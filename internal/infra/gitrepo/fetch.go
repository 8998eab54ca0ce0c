package gitrepo

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// Fetch updates the remote-tracking references of origin. The working tree
// and local branches are left alone.
func (s *Store) Fetch(ctx context.Context, root string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := s.open(root)
	if err != nil {
		return err
	}

	auth, err := s.remoteAuth(repo)
	if err != nil {
		return err
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: domain.DefaultRemote,
		Auth:       auth,
	})
	switch {
	case err == nil,
		errors.Is(err, git.NoErrAlreadyUpToDate),
		errors.Is(err, transport.ErrEmptyRemoteRepository):
		return nil
	default:
		return classifyRemoteError("fetch origin", err)
	}
}
