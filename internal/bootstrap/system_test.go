package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/osvaldoandrade/wikisync/internal/config"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/infra/gitrepo"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes")
	if err := gitrepo.NewStore().Init(context.Background(), notes, "main"); err != nil {
		t.Fatalf("init volume: %v", err)
	}
	cfg := config.Default()
	cfg.Volumes = []config.VolumeConfig{
		{Name: "notes", Path: notes},
		{Name: "broken", Path: filepath.Join(dir, "missing")},
	}
	cfg.JournalPath = filepath.Join(dir, "state", "journal.db")
	return cfg
}

func TestBuildRegistersVolumesAndJournal(t *testing.T) {
	sys, err := Build(context.Background(), testConfig(t), Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer sys.Close()

	if sys.Journal == nil {
		t.Fatalf("expected journal to be opened")
	}
	infos := sys.Engine.Volumes()
	if len(infos) != 2 {
		t.Fatalf("expected 2 volumes, got %d", len(infos))
	}
	if infos[0].Name != "broken" || infos[0].Available {
		t.Fatalf("expected broken volume to be unavailable, got %+v", infos[0])
	}

	if _, err := sys.Engine.Status(context.Background(), "notes"); err != nil {
		t.Fatalf("status: %v", err)
	}
	entries, err := sys.Engine.History(context.Background(), "notes", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 || entries[0].Operation != domain.OpStatus {
		t.Fatalf("expected one status entry, got %+v", entries)
	}
}

func TestBuildStrictRejectsUnavailableVolumes(t *testing.T) {
	_, err := Build(context.Background(), testConfig(t), Options{Strict: true})
	if !errors.Is(err, ErrUnavailableVolumes) {
		t.Fatalf("expected ErrUnavailableVolumes, got %v", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Volumes = []config.VolumeConfig{{Name: "notes"}}
	if _, err := Build(context.Background(), cfg, Options{}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
