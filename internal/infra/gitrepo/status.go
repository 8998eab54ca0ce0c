package gitrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

func (s *Store) LoadReport(ctx context.Context, root string) (domain.SyncReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.SyncReport{}, err
	}

	repo, wt, err := s.openWorktree(root)
	if err != nil {
		return domain.SyncReport{}, err
	}

	files, err := changedFiles(repo, wt)
	if err != nil {
		return domain.SyncReport{}, err
	}

	tracking, err := loadTracking(repo, false)
	if err != nil {
		return domain.SyncReport{}, err
	}

	report := domain.SyncReport{
		Files:       files,
		Branch:      tracking.Branch,
		Upstream:    tracking.Upstream,
		HasUpstream: tracking.Configured,
	}
	if tracking.Configured && tracking.Head != "" && tracking.Tip != "" {
		ahead, behind, err := aheadBehind(repo, plumbing.NewHash(tracking.Head), plumbing.NewHash(tracking.Tip))
		if err != nil {
			return domain.SyncReport{}, err
		}
		report.CommitsAhead = ahead
		report.CommitsBehind = behind
	}
	return report, nil
}

func changedFiles(repo *git.Repository, wt *git.Worktree) ([]domain.FileStatus, error) {
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("compute worktree status: %w", err)
	}

	kinds := make(map[string]domain.ChangeKind, len(status))
	for path, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		kinds[path] = classify(fs)
	}

	conflicted, err := unmergedPaths(repo)
	if err != nil {
		return nil, err
	}
	for _, path := range conflicted {
		if _, ok := kinds[path]; !ok {
			kinds[path] = domain.ChangeUnknown
		}
	}

	files := make([]domain.FileStatus, 0, len(kinds))
	for path, kind := range kinds {
		files = append(files, domain.FileStatus{Path: path, Status: kind})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// classify picks one kind per path: New, then Modified, Deleted, Renamed.
func classify(fs *git.FileStatus) domain.ChangeKind {
	has := func(code git.StatusCode) bool {
		return fs.Staging == code || fs.Worktree == code
	}
	switch {
	case has(git.Added), has(git.Untracked):
		return domain.ChangeNew
	case has(git.Modified):
		return domain.ChangeModified
	case has(git.Deleted):
		return domain.ChangeDeleted
	case has(git.Renamed):
		return domain.ChangeRenamed
	default:
		return domain.ChangeUnknown
	}
}

func unmergedPaths(repo *git.Repository) ([]string, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return unmergedEntries(idx), nil
}

// stageResolved is the stage of an ordinary index entry. go-git's
// index.Merged constant is 1, which is the ancestor stage of a conflict.
const stageResolved index.Stage = 0

func unmergedEntries(idx *index.Index) []string {
	seen := make(map[string]struct{})
	paths := make([]string, 0)
	for _, entry := range idx.Entries {
		if entry.Stage == stageResolved {
			continue
		}
		if _, ok := seen[entry.Name]; ok {
			continue
		}
		seen[entry.Name] = struct{}{}
		paths = append(paths, entry.Name)
	}
	sort.Strings(paths)
	return paths
}
