package gitrepo

import (
	"context"
	"fmt"
)

func (s *Store) RunGC(ctx context.Context, root, prune string) error {
	if _, err := s.open(root); err != nil {
		return err
	}

	args := []string{"gc", "--quiet"}
	if prune != "" {
		args = append(args, "--prune="+prune)
	}
	if _, err := s.runGit(ctx, root, nil, args...); err != nil {
		return fmt.Errorf("gc %s: %w", root, err)
	}
	return nil
}
