package volume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type summarizer interface {
	Summary() string
}

// Run executes fn against the named volume while holding its lock and a
// pool slot. fn runs on its own goroutine with a context detached from the
// caller: when ctx ends first Run returns ctx.Err() and the operation
// finishes in the background before the lock is released. A panic in fn is
// reported as domain.ErrInternal.
func Run[T any](ctx context.Context, r *Registry, name string, op domain.Operation, fn func(ctx context.Context, root string) (T, error)) (T, error) {
	var zero T
	state, err := r.Lookup(name)
	if err != nil {
		return zero, err
	}

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := execute(ctx, r, state, op, fn)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		return zero, fmt.Errorf("%s %s: %w", op, state.Name(), ctx.Err())
	}
}

func execute[T any](ctx context.Context, r *Registry, state *State, op domain.Operation, fn func(ctx context.Context, root string) (T, error)) (value T, err error) {
	if err := state.lock.Acquire(ctx, 1); err != nil {
		return value, fmt.Errorf("%s %s: wait for volume lock: %w", op, state.Name(), err)
	}
	defer state.lock.Release(1)

	if err := r.pool.acquire(ctx); err != nil {
		return value, fmt.Errorf("%s %s: wait for worker: %w", op, state.Name(), err)
	}
	defer r.pool.release()

	entry := domain.JournalEntry{
		Volume:    state.Name(),
		Operation: op,
		StartedAt: r.clock.Now(),
	}
	if r.ids != nil {
		if id, idErr := r.ids.NewID(); idErr == nil {
			entry.ID = id
		}
	}
	slog.Debug("volume operation started", "volume", state.Name(), "op", op, "id", entry.ID)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s %s: %w: %v", op, state.Name(), domain.ErrInternal, p)
		}
		entry.FinishedAt = r.clock.Now()
		r.finish(entry, value, err)
	}()

	return fn(context.WithoutCancel(ctx), state.Root())
}

func (r *Registry) finish(entry domain.JournalEntry, value any, err error) {
	entry.Outcome = domain.OutcomeOK
	if err != nil {
		entry.Outcome = domain.OutcomeError
		entry.Error = err.Error()
	}
	if report, ok := value.(domain.SyncReport); ok && err == nil {
		entry.Ahead = report.CommitsAhead
		entry.Behind = report.CommitsBehind
	}
	if s, ok := value.(summarizer); ok && err == nil {
		entry.Detail = s.Summary()
	}

	attrs := []any{"volume", entry.Volume, "op", entry.Operation, "id", entry.ID, "duration", entry.Duration()}
	switch {
	case err == nil:
		slog.Info("volume operation finished", attrs...)
	case errors.Is(err, domain.ErrInternal):
		slog.Error("volume operation failed", append(attrs, "err", err)...)
	default:
		slog.Warn("volume operation failed", append(attrs, "err", err)...)
	}

	if r.recorder == nil {
		return
	}
	if recErr := r.recorder.Record(context.Background(), entry); recErr != nil {
		slog.Warn("journal write failed", "volume", entry.Volume, "op", entry.Operation, "err", recErr)
	}
}
