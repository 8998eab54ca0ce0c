package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenWithOptions(filepath.Join(t.TempDir(), "nested", "journal.db"), OpenOptions{Fast: true})
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entryAt(volume string, op domain.Operation, at time.Time) domain.JournalEntry {
	return domain.JournalEntry{
		ID:         volume + "-" + string(op),
		Volume:     volume,
		Operation:  op,
		Outcome:    domain.OutcomeOK,
		Detail:     "files=0",
		Ahead:      1,
		StartedAt:  at,
		FinishedAt: at.Add(150 * time.Millisecond),
	}
}

func TestRecordAndListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Record(ctx, entryAt("notes", domain.OpFetch, base)); err != nil {
		t.Fatalf("record: %v", err)
	}
	failed := entryAt("notes", domain.OpPush, base.Add(time.Minute))
	failed.Outcome = domain.OutcomeError
	failed.Error = "remote ahead; pull required"
	if err := store.Record(ctx, failed); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, entryAt("docs", domain.OpStatus, base)); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := store.List(ctx, "notes", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != domain.OpPush || entries[0].Error == "" {
		t.Fatalf("unexpected newest entry %+v", entries[0])
	}
	if !entries[1].StartedAt.Equal(base) || entries[1].Duration() != 150*time.Millisecond {
		t.Fatalf("timestamps did not round trip: %+v", entries[1])
	}
	if entries[1].Ahead != 1 || entries[1].Detail != "files=0" {
		t.Fatalf("unexpected fields %+v", entries[1])
	}

	limited, err := store.List(ctx, "notes", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestPruneKeepsNewestPerVolume(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, entryAt("notes", domain.OpStatus, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := store.Record(ctx, entryAt("docs", domain.OpStatus, base)); err != nil {
		t.Fatalf("record: %v", err)
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	notes, err := store.List(ctx, "notes", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 || !notes[0].StartedAt.Equal(base.Add(4*time.Second)) {
		t.Fatalf("unexpected remaining entries %+v", notes)
	}
	docs, err := store.List(ctx, "docs", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("other volumes must be untouched")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
