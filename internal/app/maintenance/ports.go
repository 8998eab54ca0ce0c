package maintenance

import "context"

type GCExecutor interface {
	RunGC(ctx context.Context, root, prune string) error
}
