package domain

import (
	"fmt"
	"strings"
)

type ChangeKind string

const (
	ChangeNew      ChangeKind = "New"
	ChangeModified ChangeKind = "Modified"
	ChangeDeleted  ChangeKind = "Deleted"
	ChangeRenamed  ChangeKind = "Renamed"
	ChangeUnknown  ChangeKind = "Unknown"
)

func (kind ChangeKind) IsValid() bool {
	switch kind {
	case ChangeNew, ChangeModified, ChangeDeleted, ChangeRenamed, ChangeUnknown:
		return true
	default:
		return false
	}
}

type FileStatus struct {
	Path   string
	Status ChangeKind
}

// SyncReport is the local view of a volume: uncommitted changes plus the
// distance between the current branch and its upstream.
type SyncReport struct {
	Files         []FileStatus
	CommitsAhead  int
	CommitsBehind int
	Branch        string
	Upstream      string
	HasUpstream   bool
}

func (r SyncReport) Clean() bool {
	return len(r.Files) == 0
}

func (r SyncReport) Summary() string {
	parts := []string{fmt.Sprintf("files=%d", len(r.Files))}
	if r.HasUpstream {
		parts = append(parts, fmt.Sprintf("ahead=%d", r.CommitsAhead), fmt.Sprintf("behind=%d", r.CommitsBehind))
	}
	return strings.Join(parts, " ")
}

// Tracking describes HEAD and the remote-tracking reference it follows.
// Head and Tip are empty when the branch is unborn or the tip was never fetched.
type Tracking struct {
	Branch      string
	Head        string
	Upstream    string
	UpstreamRef string
	Tip         string
	Configured  bool
}

func (t Tracking) Detached() bool {
	return t.Branch == ""
}

func (t Tracking) Unborn() bool {
	return t.Head == ""
}
