package domain

import "fmt"

type CommitRequest struct {
	Message     string
	Files       []string
	AuthorName  string
	AuthorEmail string
}

type CommitResult struct {
	Commit string
}

func (r CommitResult) Summary() string {
	return "commit=" + r.Commit
}

type RestoreRequest struct {
	Files []string
}

type MergeAnalysis int

const (
	MergeUnsupported MergeAnalysis = iota
	MergeUpToDate
	MergeFastForward
	MergeNormal
)

func (a MergeAnalysis) String() string {
	switch a {
	case MergeUpToDate:
		return "up_to_date"
	case MergeFastForward:
		return "fast_forward"
	case MergeNormal:
		return "normal"
	default:
		return "unsupported"
	}
}

type PullOutcome string

const (
	PullUpToDate    PullOutcome = "up_to_date"
	PullFastForward PullOutcome = "fast_forward"
	PullMerged      PullOutcome = "merged"
)

type PullResult struct {
	Outcome PullOutcome
	Head    string
}

func (r PullResult) Summary() string {
	return fmt.Sprintf("outcome=%s head=%s", r.Outcome, r.Head)
}
