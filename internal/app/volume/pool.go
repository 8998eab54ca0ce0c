package volume

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

const minPoolSize = 2

// Pool bounds how many blocking git operations run at once across volumes.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

func DefaultPoolSize() int {
	return max(runtime.NumCPU()*2, minPoolSize)
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

func (p *Pool) Size() int {
	return int(p.size)
}

func (p *Pool) acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

func (p *Pool) release() {
	p.sem.Release(1)
}
