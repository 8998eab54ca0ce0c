package httpapi

import (
	"time"

	"github.com/osvaldoandrade/wikisync/internal/app/volume"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type fileStatusResponse struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

type syncReportResponse struct {
	Files         []fileStatusResponse `json:"files"`
	CommitsAhead  int                  `json:"commits_ahead"`
	CommitsBehind int                  `json:"commits_behind"`
	Branch        string               `json:"branch"`
	Upstream      string               `json:"upstream"`
	HasUpstream   bool                 `json:"has_upstream"`
}

type commitRequest struct {
	Message     string   `json:"message"`
	Files       []string `json:"files"`
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email"`
}

type commitResponse struct {
	Commit string `json:"commit"`
}

type restoreRequest struct {
	Files []string `json:"files"`
}

type pullResponse struct {
	Outcome string `json:"outcome"`
	Head    string `json:"head"`
}

type okResponse struct {
	Status string `json:"status"`
}

type volumeResponse struct {
	Name      string `json:"name"`
	Root      string `json:"root"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitzero"`
}

type journalEntryResponse struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitzero"`
	Detail     string    `json:"detail,omitzero"`
	Ahead      int       `json:"ahead"`
	Behind     int       `json:"behind"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
}

func toSyncReport(report domain.SyncReport) syncReportResponse {
	files := make([]fileStatusResponse, 0, len(report.Files))
	for _, file := range report.Files {
		files = append(files, fileStatusResponse{Path: file.Path, Status: string(file.Status)})
	}
	return syncReportResponse{
		Files:         files,
		CommitsAhead:  report.CommitsAhead,
		CommitsBehind: report.CommitsBehind,
		Branch:        report.Branch,
		Upstream:      report.Upstream,
		HasUpstream:   report.HasUpstream,
	}
}

func toVolumes(infos []volume.Info) []volumeResponse {
	out := make([]volumeResponse, 0, len(infos))
	for _, info := range infos {
		resp := volumeResponse{Name: info.Name, Root: info.Root, Available: info.Available}
		if info.Err != nil {
			resp.Error = info.Err.Error()
		}
		out = append(out, resp)
	}
	return out
}

func toJournal(entries []domain.JournalEntry) []journalEntryResponse {
	out := make([]journalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, journalEntryResponse{
			ID:         entry.ID,
			Operation:  string(entry.Operation),
			Outcome:    entry.Outcome,
			Error:      entry.Error,
			Detail:     entry.Detail,
			Ahead:      entry.Ahead,
			Behind:     entry.Behind,
			StartedAt:  entry.StartedAt,
			FinishedAt: entry.FinishedAt,
			DurationMS: entry.Duration().Milliseconds(),
		})
	}
	return out
}
