package maintenance

import (
	"context"
	"fmt"
	"strings"
)

type GCService struct {
	executor GCExecutor
}

func NewGCService(executor GCExecutor) *GCService {
	return &GCService{executor: executor}
}

// GC compacts the object store of a volume. Prune is passed to
// `git gc --prune=` and must be a single token such as "now" or "2.weeks.ago".
func (s *GCService) GC(ctx context.Context, root string, opts GCOptions) error {
	prune := strings.TrimSpace(opts.Prune)
	if strings.HasPrefix(prune, "-") || strings.ContainsAny(prune, " \t\n") {
		return fmt.Errorf("%q: %w", opts.Prune, ErrInvalidPrune)
	}
	return s.executor.RunGC(ctx, root, prune)
}
