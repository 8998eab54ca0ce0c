package gitsync

import (
	"context"

	"github.com/osvaldoandrade/wikisync/internal/app/maintenance"
	"github.com/osvaldoandrade/wikisync/internal/app/volume"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

const DefaultHistoryLimit = 50

// Engine is the entry point shared by the HTTP adapter, the CLI and the
// SDK. Every operation resolves the volume and runs under its lock.
type Engine struct {
	volumes *volume.Registry
	journal JournalReader
	status  *StatusService
	fetch   *FetchService
	pull    *PullService
	push    *PushService
	commit  *CommitService
	restore *RestoreService
	gc      *maintenance.GCService
}

func NewEngine(volumes *volume.Registry, store Store, journal JournalReader) *Engine {
	return &Engine{
		volumes: volumes,
		journal: journal,
		status:  NewStatusService(store),
		fetch:   NewFetchService(store, store),
		pull:    NewPullService(store),
		push:    NewPushService(store),
		commit:  NewCommitService(store),
		restore: NewRestoreService(store),
		gc:      maintenance.NewGCService(store),
	}
}

func (e *Engine) Volumes() []volume.Info {
	return e.volumes.List()
}

func (e *Engine) Status(ctx context.Context, name string) (domain.SyncReport, error) {
	return volume.Run(ctx, e.volumes, name, domain.OpStatus, e.status.Status)
}

func (e *Engine) Fetch(ctx context.Context, name string) (domain.SyncReport, error) {
	return volume.Run(ctx, e.volumes, name, domain.OpFetch, e.fetch.Fetch)
}

func (e *Engine) Pull(ctx context.Context, name string) (domain.PullResult, error) {
	return volume.Run(ctx, e.volumes, name, domain.OpPull, e.pull.Pull)
}

func (e *Engine) Push(ctx context.Context, name string) error {
	_, err := volume.Run(ctx, e.volumes, name, domain.OpPush, func(ctx context.Context, root string) (struct{}, error) {
		return struct{}{}, e.push.Push(ctx, root)
	})
	return err
}

func (e *Engine) Commit(ctx context.Context, name string, req domain.CommitRequest) (domain.CommitResult, error) {
	return volume.Run(ctx, e.volumes, name, domain.OpCommit, func(ctx context.Context, root string) (domain.CommitResult, error) {
		return e.commit.Commit(ctx, root, req)
	})
}

func (e *Engine) Restore(ctx context.Context, name string, req domain.RestoreRequest) error {
	_, err := volume.Run(ctx, e.volumes, name, domain.OpRestore, func(ctx context.Context, root string) (struct{}, error) {
		return struct{}{}, e.restore.Restore(ctx, root, req)
	})
	return err
}

func (e *Engine) AbortMerge(ctx context.Context, name string) error {
	_, err := volume.Run(ctx, e.volumes, name, domain.OpAbortMerge, func(ctx context.Context, root string) (struct{}, error) {
		return struct{}{}, e.pull.AbortMerge(ctx, root)
	})
	return err
}

func (e *Engine) GC(ctx context.Context, name string, opts maintenance.GCOptions) error {
	_, err := volume.Run(ctx, e.volumes, name, domain.OpGC, func(ctx context.Context, root string) (struct{}, error) {
		return struct{}{}, e.gc.GC(ctx, root, opts)
	})
	return err
}

// History lists the most recent journal entries of a volume, newest first.
func (e *Engine) History(ctx context.Context, name string, limit int) ([]domain.JournalEntry, error) {
	state, err := e.volumes.Lookup(name)
	if err != nil {
		return nil, err
	}
	if e.journal == nil {
		return []domain.JournalEntry{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return e.journal.List(ctx, state.Name(), limit)
}
