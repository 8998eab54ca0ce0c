package gitsync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type fakeMergeStore struct {
	fetchErr    error
	tracking    domain.Tracking
	trackingErr error
	analysis    domain.MergeAnalysis
	analysisErr error
	ffErr       error
	conflicts   []string
	mergeErr    error
	mergeHash   string
	commitErr   error
	commitMsg   string
	abortErr    error
	calls       []string
}

func (f *fakeMergeStore) Fetch(ctx context.Context, root string) error {
	f.calls = append(f.calls, "fetch")
	return f.fetchErr
}

func (f *fakeMergeStore) LoadTracking(ctx context.Context, root string) (domain.Tracking, error) {
	f.calls = append(f.calls, "tracking")
	return f.tracking, f.trackingErr
}

func (f *fakeMergeStore) AnalyzeMerge(ctx context.Context, root string, t domain.Tracking) (domain.MergeAnalysis, error) {
	f.calls = append(f.calls, "analyze")
	return f.analysis, f.analysisErr
}

func (f *fakeMergeStore) FastForward(ctx context.Context, root string, t domain.Tracking) error {
	f.calls = append(f.calls, "fast-forward")
	return f.ffErr
}

func (f *fakeMergeStore) Merge(ctx context.Context, root string, t domain.Tracking) ([]string, error) {
	f.calls = append(f.calls, "merge")
	return f.conflicts, f.mergeErr
}

func (f *fakeMergeStore) CommitMerge(ctx context.Context, root string, t domain.Tracking, message string) (string, error) {
	f.calls = append(f.calls, "commit-merge")
	f.commitMsg = message
	return f.mergeHash, f.commitErr
}

func (f *fakeMergeStore) AbortMerge(ctx context.Context, root string) error {
	f.calls = append(f.calls, "abort")
	return f.abortErr
}

func baseTracking() domain.Tracking {
	return domain.Tracking{
		Branch:      "main",
		Head:        "1111111111111111111111111111111111111111",
		Upstream:    "origin/main",
		UpstreamRef: "refs/remotes/origin/main",
		Tip:         "2222222222222222222222222222222222222222",
		Configured:  true,
	}
}

func TestPullUpToDate(t *testing.T) {
	store := &fakeMergeStore{tracking: baseTracking(), analysis: domain.MergeUpToDate}
	result, err := NewPullService(store).Pull(context.Background(), "/vol")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.Outcome != domain.PullUpToDate || result.Head != baseTracking().Head {
		t.Fatalf("unexpected result %+v", result)
	}
	if strings.Join(store.calls, ",") != "fetch,tracking,analyze" {
		t.Fatalf("unexpected calls %v", store.calls)
	}
}

func TestPullFastForward(t *testing.T) {
	store := &fakeMergeStore{tracking: baseTracking(), analysis: domain.MergeFastForward}
	result, err := NewPullService(store).Pull(context.Background(), "/vol")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.Outcome != domain.PullFastForward || result.Head != baseTracking().Tip {
		t.Fatalf("unexpected result %+v", result)
	}
	if store.calls[len(store.calls)-1] != "fast-forward" {
		t.Fatalf("expected fast-forward, calls %v", store.calls)
	}
}

func TestPullNormalMerge(t *testing.T) {
	store := &fakeMergeStore{tracking: baseTracking(), analysis: domain.MergeNormal, mergeHash: "abc"}
	result, err := NewPullService(store).Pull(context.Background(), "/vol")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.Outcome != domain.PullMerged || result.Head != "abc" {
		t.Fatalf("unexpected result %+v", result)
	}
	if store.commitMsg != "Merge remote-tracking branch 'origin/main'" {
		t.Fatalf("unexpected merge message %q", store.commitMsg)
	}
}

func TestPullConflictNeedsManualResolution(t *testing.T) {
	store := &fakeMergeStore{tracking: baseTracking(), analysis: domain.MergeNormal, conflicts: []string{"home.md"}}
	_, err := NewPullService(store).Pull(context.Background(), "/vol")
	if !errors.Is(err, domain.ErrMergeConflict) {
		t.Fatalf("expected ErrMergeConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "manual resolution required") || !strings.Contains(err.Error(), "home.md") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	for _, call := range store.calls {
		if call == "commit-merge" || call == "abort" {
			t.Fatalf("conflict state must be left in place, calls %v", store.calls)
		}
	}
}

func TestPullAbortsWhenMergeCommitFails(t *testing.T) {
	store := &fakeMergeStore{tracking: baseTracking(), analysis: domain.MergeNormal, commitErr: domain.ErrSignature}
	_, err := NewPullService(store).Pull(context.Background(), "/vol")
	if !errors.Is(err, domain.ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
	if store.calls[len(store.calls)-1] != "abort" {
		t.Fatalf("expected abort after failed merge commit, calls %v", store.calls)
	}
}

func TestPullUnsupported(t *testing.T) {
	store := &fakeMergeStore{tracking: baseTracking(), analysis: domain.MergeUnsupported}
	_, err := NewPullService(store).Pull(context.Background(), "/vol")
	if !errors.Is(err, domain.ErrUnsupportedMerge) {
		t.Fatalf("expected ErrUnsupportedMerge, got %v", err)
	}
}

func TestPullDetachedHead(t *testing.T) {
	store := &fakeMergeStore{tracking: domain.Tracking{Head: "abc"}}
	_, err := NewPullService(store).Pull(context.Background(), "/vol")
	if !errors.Is(err, domain.ErrDetachedHead) {
		t.Fatalf("expected ErrDetachedHead, got %v", err)
	}
}

func TestPullStopsOnFetchError(t *testing.T) {
	store := &fakeMergeStore{fetchErr: domain.ErrNoCredentials}
	_, err := NewPullService(store).Pull(context.Background(), "/vol")
	if !errors.Is(err, domain.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
	if len(store.calls) != 1 {
		t.Fatalf("expected only fetch, calls %v", store.calls)
	}
}
