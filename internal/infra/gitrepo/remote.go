package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

func (s *Store) SetRemote(ctx context.Context, root, name, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultRemote
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("remote URL is required")
	}

	repo, err := s.open(root)
	if err != nil {
		return err
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("read git config: %w", err)
	}

	if existing, ok := cfg.Remotes[name]; ok {
		existing.URLs = []string{url}
		cfg.Remotes[name] = existing
	} else {
		cfg.Remotes[name] = &config.RemoteConfig{
			Name: name,
			URLs: []string{url},
		}
	}

	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("write git config: %w", err)
	}
	return nil
}

// SetUpstream records branch.<branch>.remote/merge so status can report
// ahead/behind against <remote>/<branch>.
func (s *Store) SetUpstream(ctx context.Context, root, branch, remote string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		return fmt.Errorf("branch is required")
	}
	remote = strings.TrimSpace(remote)
	if remote == "" {
		remote = domain.DefaultRemote
	}

	repo, err := s.open(root)
	if err != nil {
		return err
	}
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("read git config: %w", err)
	}
	if _, ok := cfg.Remotes[remote]; !ok && remote != "." {
		return fmt.Errorf("set upstream %s: %w", remote, domain.ErrRemoteNotFound)
	}

	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("write git config: %w", err)
	}
	return nil
}

func (s *Store) remoteAuth(repo *git.Repository) (transport.AuthMethod, error) {
	remote, err := repo.Remote(domain.DefaultRemote)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil, domain.ErrRemoteNotFound
		}
		return nil, fmt.Errorf("read git remote: %w", err)
	}

	remoteURL := ""
	if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
		remoteURL = cfg.URLs[0]
	}
	return s.credentials.authForURL(remoteURL)
}

func classifyRemoteError(op string, err error) error {
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		isAuthFailure(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrAuthRejected, err)
	case errors.Is(err, git.ErrNonFastForwardUpdate), isNonFastForward(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNonFastForward, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransport, err)
	}
}

func isNonFastForward(err error) bool {
	return err != nil && strings.Contains(err.Error(), "non-fast-forward update")
}

func isAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication required") ||
		strings.Contains(msg, "authorization failed") ||
		strings.Contains(msg, "permission denied")
}
