package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/osvaldoandrade/wikisync/internal/app/paths"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

const DefaultBranch = "main"

type InitService struct {
	store Store
}

type InitOptions struct {
	Branch    string
	RemoteURL string
}

func NewInitService(store Store) *InitService {
	return &InitService{store: store}
}

// Init creates an empty volume working tree. With a remote URL, origin is
// configured and the branch tracks origin/<branch>.
func (s *InitService) Init(ctx context.Context, path string, opts InitOptions) error {
	absPath, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return err
	}
	branch, err := branchName(opts.Branch)
	if err != nil {
		return err
	}

	if err := s.store.Init(ctx, absPath, branch); err != nil {
		return err
	}
	if strings.TrimSpace(opts.RemoteURL) == "" {
		return nil
	}
	return s.link(ctx, absPath, branch, opts.RemoteURL)
}

// SetOrigin points origin of an existing volume at url and makes branch
// track it.
func (s *InitService) SetOrigin(ctx context.Context, path, branch, url string) error {
	absPath, err := paths.NormalizeRepoPath(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(url) == "" {
		return ErrRepoURLRequired
	}
	branch, err = branchName(branch)
	if err != nil {
		return err
	}
	return s.link(ctx, absPath, branch, url)
}

func (s *InitService) link(ctx context.Context, root, branch, url string) error {
	if err := s.store.SetRemote(ctx, root, domain.DefaultRemote, url); err != nil {
		return err
	}
	return s.store.SetUpstream(ctx, root, branch, domain.DefaultRemote)
}

func branchName(value string) (string, error) {
	branch := strings.TrimSpace(value)
	if branch == "" {
		return DefaultBranch, nil
	}
	if !plumbing.NewBranchReferenceName(branch).IsBranch() || strings.ContainsAny(branch, " ~^:?*[\\") || strings.Contains(branch, "..") {
		return "", fmt.Errorf("%q: %w", branch, ErrInvalidBranch)
	}
	return branch, nil
}
