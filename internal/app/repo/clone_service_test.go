package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeCloner struct {
	calledURL  string
	calledPath string
	err        error
}

func (f *fakeCloner) Clone(ctx context.Context, url, path string) error {
	f.calledURL = url
	f.calledPath = path
	return f.err
}

func TestCloneRequiresURL(t *testing.T) {
	svc := NewCloneService(&fakeCloner{})
	err := svc.Clone(context.Background(), " ", "")
	if !errors.Is(err, ErrRepoURLRequired) {
		t.Fatalf("expected ErrRepoURLRequired, got %v", err)
	}
}

func TestCloneUsesProvidedPath(t *testing.T) {
	cloner := &fakeCloner{}
	svc := NewCloneService(cloner)

	if err := svc.Clone(context.Background(), "https://git.example.com/wiki.git", "target"); err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}

	expected, err := filepath.Abs("target")
	if err != nil {
		t.Fatalf("failed to build abs path: %v", err)
	}

	if cloner.calledPath != expected {
		t.Fatalf("expected path %q, got %q", expected, cloner.calledPath)
	}
}

func TestCloneDefaultsPathFromURL(t *testing.T) {
	cloner := &fakeCloner{}
	svc := NewCloneService(cloner)

	if err := svc.Clone(context.Background(), "https://git.example.com/team-wiki.git", ""); err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}

	expected, err := filepath.Abs("team-wiki")
	if err != nil {
		t.Fatalf("failed to build abs path: %v", err)
	}

	if cloner.calledPath != expected {
		t.Fatalf("expected path %q, got %q", expected, cloner.calledPath)
	}
}

func TestCloneDefaultsPathFromSCPURL(t *testing.T) {
	cloner := &fakeCloner{}
	svc := NewCloneService(cloner)

	if err := svc.Clone(context.Background(), "git@git.example.com:team/handbook.git", ""); err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}
	if filepath.Base(cloner.calledPath) != "handbook" {
		t.Fatalf("expected handbook dir, got %q", cloner.calledPath)
	}
}

func TestCloneRejectsNonEmptyTarget(t *testing.T) {
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "page.md"), []byte("# page\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cloner := &fakeCloner{}
	svc := NewCloneService(cloner)

	err := svc.Clone(context.Background(), "https://git.example.com/wiki.git", target)
	if !errors.Is(err, ErrCloneTargetExists) {
		t.Fatalf("expected ErrCloneTargetExists, got %v", err)
	}
	if cloner.calledURL != "" {
		t.Fatalf("cloner must not run")
	}
}

func TestCloneAcceptsEmptyTarget(t *testing.T) {
	target := t.TempDir()
	cloner := &fakeCloner{}
	svc := NewCloneService(cloner)

	if err := svc.Clone(context.Background(), "https://git.example.com/wiki.git", target); err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}
	if cloner.calledPath != target {
		t.Fatalf("expected %q, got %q", target, cloner.calledPath)
	}
}
