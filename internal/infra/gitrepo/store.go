package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

// Store runs every git operation of the sync engine. It keeps no open
// handles: each call opens the repository at the given root, so callers
// own serialization.
type Store struct {
	options     StoreOptions
	credentials *CredentialProvider
}

type StoreOptions struct {
	SignCommits bool
	SignKey     string
	// GitBinary is the executable used for merges, gc and signed commits.
	GitBinary   string
	Credentials Credentials
}

func NewStore() *Store {
	return NewStoreWithOptions(StoreOptions{})
}

func NewStoreWithOptions(options StoreOptions) *Store {
	if strings.TrimSpace(options.GitBinary) == "" {
		options.GitBinary = "git"
	}
	return &Store{
		options:     options,
		credentials: NewCredentialProvider(options.Credentials),
	}
}

// Init creates a non-bare repository whose HEAD points at branch.
func (s *Store) Init(ctx context.Context, root, branch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create volume dir: %w", err)
	}

	repo, err := git.PlainInit(root, false)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return fmt.Errorf("repository already exists: %w", err)
		}
		return fmt.Errorf("init git repo: %w", err)
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		return nil
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := repo.Storer.SetReference(head); err != nil {
		return fmt.Errorf("set HEAD: %w", err)
	}
	return nil
}

// Validate reports whether root is the top of a non-bare working tree.
func (s *Store) Validate(ctx context.Context, root string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.openWorktree(root)
	return err
}

func (s *Store) open(root string) (*git.Repository, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("open git repo %s: %w", root, domain.ErrNotARepository)
		}
		return nil, fmt.Errorf("open git repo %s: %w", root, err)
	}
	return repo, nil
}

func (s *Store) openWorktree(root string) (*git.Repository, *git.Worktree, error) {
	repo, err := s.open(root)
	if err != nil {
		return nil, nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, nil, fmt.Errorf("open worktree %s: bare repository: %w", root, domain.ErrNotARepository)
		}
		return nil, nil, fmt.Errorf("open worktree %s: %w", root, err)
	}
	return repo, wt, nil
}
