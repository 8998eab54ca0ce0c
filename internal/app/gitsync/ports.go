package gitsync

import (
	"context"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type StatusStore interface {
	LoadReport(ctx context.Context, root string) (domain.SyncReport, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, root string) error
}

type Pusher interface {
	Push(ctx context.Context, root string) error
}

type Committer interface {
	Commit(ctx context.Context, root string, req domain.CommitRequest) (string, error)
}

type Restorer interface {
	Restore(ctx context.Context, root string, files []string) error
}

type MergeStore interface {
	Fetcher
	LoadTracking(ctx context.Context, root string) (domain.Tracking, error)
	AnalyzeMerge(ctx context.Context, root string, t domain.Tracking) (domain.MergeAnalysis, error)
	FastForward(ctx context.Context, root string, t domain.Tracking) error
	Merge(ctx context.Context, root string, t domain.Tracking) ([]string, error)
	CommitMerge(ctx context.Context, root string, t domain.Tracking, message string) (string, error)
	AbortMerge(ctx context.Context, root string) error
}

// Store is everything the engine needs from the git layer.
type Store interface {
	StatusStore
	MergeStore
	Pusher
	Committer
	Restorer
	RunGC(ctx context.Context, root, prune string) error
}

type JournalReader interface {
	List(ctx context.Context, volume string, limit int) ([]domain.JournalEntry, error)
}
