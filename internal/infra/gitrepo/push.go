package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// Push sends the current branch to the branch of the same name on origin.
// Non-fast-forward rejections are reported, never forced.
func (s *Store) Push(ctx context.Context, root string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := s.open(root)
	if err != nil {
		return err
	}

	if _, err := repo.Remote(domain.DefaultRemote); err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return fmt.Errorf("push: %w", domain.ErrRemoteNotFound)
		}
		return fmt.Errorf("read git remote: %w", err)
	}

	tracking, err := loadTracking(repo, false)
	if err != nil {
		return err
	}
	if tracking.Detached() {
		return fmt.Errorf("push: %w", domain.ErrDetachedHead)
	}
	if tracking.Unborn() {
		return fmt.Errorf("push: branch %s has no commits: %w", tracking.Branch, domain.ErrDetachedHead)
	}

	auth, err := s.remoteAuth(repo)
	if err != nil {
		return err
	}

	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", tracking.Branch, tracking.Branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: domain.DefaultRemote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       auth,
	})
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return classifyRemoteError("push "+tracking.Branch, err)
}
