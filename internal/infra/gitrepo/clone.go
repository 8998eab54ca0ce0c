package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Clone creates a volume working tree from url. Credentials follow the same
// rules as fetch and push.
func (s *Store) Clone(ctx context.Context, url, root string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	existed, err := ensureClonePath(root)
	if err != nil {
		return err
	}

	auth, err := s.credentials.authForURL(url)
	if err != nil {
		return err
	}

	_, err = git.PlainCloneContext(ctx, root, false, &git.CloneOptions{URL: url, Auth: auth})
	if err != nil {
		cleanupClone(root, existed)
		return classifyRemoteError("clone "+url, err)
	}
	return nil
}

// ensureClonePath accepts a missing or empty directory and reports whether
// it already existed.
func ensureClonePath(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err == nil {
		if len(entries) > 0 {
			return true, fmt.Errorf("clone path is not empty: %w", os.ErrExist)
		}
		return true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			return false, fmt.Errorf("clone path is a file: %w", os.ErrExist)
		}
		return false, fmt.Errorf("check clone path: %w", err)
	}

	parent := filepath.Dir(path)
	if parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return false, fmt.Errorf("create parent directory: %w", err)
		}
	}
	return false, nil
}

func cleanupClone(root string, existed bool) {
	if !existed {
		_ = os.RemoveAll(root)
		return
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		_ = os.RemoveAll(filepath.Join(root, entry.Name()))
	}
}
