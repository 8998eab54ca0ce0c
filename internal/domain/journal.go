package domain

import "time"

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type JournalEntry struct {
	ID         string
	Volume     string
	Operation  Operation
	Outcome    string
	Error      string
	Detail     string
	Ahead      int
	Behind     int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (e JournalEntry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}
