package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/osvaldoandrade/wikisync/internal/app/volume"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type fileOutput struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

type reportOutput struct {
	Files         []fileOutput `json:"files"`
	CommitsAhead  int          `json:"commits_ahead"`
	CommitsBehind int          `json:"commits_behind"`
	Branch        string       `json:"branch"`
	Upstream      string       `json:"upstream,omitzero"`
	HasUpstream   bool         `json:"has_upstream"`
}

type volumeOutput struct {
	Name      string `json:"name"`
	Root      string `json:"root"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitzero"`
}

type historyOutput struct {
	ID         string `json:"id"`
	Operation  string `json:"operation"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitzero"`
	Detail     string `json:"detail,omitzero"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
}

type doneOutput struct {
	Operation string `json:"operation"`
	Target    string `json:"target"`
	Status    string `json:"status"`
}

func writeReport(cmd *cobra.Command, report domain.SyncReport, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		files := make([]fileOutput, 0, len(report.Files))
		for _, file := range report.Files {
			files = append(files, fileOutput{Path: file.Path, Status: string(file.Status)})
		}
		return encodeJSON(out, reportOutput{
			Files:         files,
			CommitsAhead:  report.CommitsAhead,
			CommitsBehind: report.CommitsBehind,
			Branch:        report.Branch,
			Upstream:      report.Upstream,
			HasUpstream:   report.HasUpstream,
		})
	}

	ui := newRenderer(out, asJSON)
	branch := report.Branch
	if branch == "" {
		branch = ui.dim("(detached)")
	}
	if err := writeKV(out, ui, "Branch", branch); err != nil {
		return err
	}
	upstream := ui.dim("(none)")
	if report.HasUpstream {
		upstream = fmt.Sprintf("%s %s", report.Upstream, ui.dim(fmt.Sprintf("ahead %d, behind %d", report.CommitsAhead, report.CommitsBehind)))
	}
	if err := writeKV(out, ui, "Upstream", upstream); err != nil {
		return err
	}
	if report.Clean() {
		return writeKV(out, ui, "Files", ui.ok("clean"))
	}
	if err := writeKV(out, ui, "Files", strconv.Itoa(len(report.Files))); err != nil {
		return err
	}
	for _, file := range report.Files {
		if _, err := fmt.Fprintf(out, "  %s %s\n", ui.change(file.Status), file.Path); err != nil {
			return err
		}
	}
	return nil
}

func writePullResult(cmd *cobra.Command, result domain.PullResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return encodeJSON(out, struct {
			Outcome string `json:"outcome"`
			Head    string `json:"head"`
		}{Outcome: string(result.Outcome), Head: result.Head})
	}
	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Outcome", ui.accent(string(result.Outcome))); err != nil {
		return err
	}
	return writeKV(out, ui, "Head", result.Head)
}

func writeCommitResult(cmd *cobra.Command, result domain.CommitResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return encodeJSON(out, struct {
			Commit string `json:"commit"`
		}{Commit: result.Commit})
	}
	ui := newRenderer(out, asJSON)
	return writeKV(out, ui, "Commit", ui.ok(result.Commit))
}

func writeVolumes(cmd *cobra.Command, infos []volume.Info, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		vols := make([]volumeOutput, 0, len(infos))
		for _, info := range infos {
			vol := volumeOutput{Name: info.Name, Root: info.Root, Available: info.Available}
			if info.Err != nil {
				vol.Error = info.Err.Error()
			}
			vols = append(vols, vol)
		}
		return encodeJSON(out, vols)
	}
	ui := newRenderer(out, asJSON)
	for _, info := range infos {
		state := ui.ok("ok")
		if !info.Available {
			state = ui.err("unavailable")
		}
		if _, err := fmt.Fprintf(out, "%s %s %s\n", ui.key(info.Name), state, ui.dim(info.Root)); err != nil {
			return err
		}
		if info.Err != nil {
			if _, err := fmt.Fprintf(out, "  %s\n", info.Err.Error()); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHistory(cmd *cobra.Command, entries []domain.JournalEntry, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		items := make([]historyOutput, 0, len(entries))
		for _, entry := range entries {
			items = append(items, historyOutput{
				ID:         entry.ID,
				Operation:  string(entry.Operation),
				Outcome:    entry.Outcome,
				Error:      entry.Error,
				Detail:     entry.Detail,
				StartedAt:  entry.StartedAt.Format(time.RFC3339Nano),
				DurationMS: entry.Duration().Milliseconds(),
			})
		}
		return encodeJSON(out, items)
	}
	ui := newRenderer(out, asJSON)
	for _, entry := range entries {
		outcome := ui.ok(entry.Outcome)
		detail := entry.Detail
		if entry.Outcome != domain.OutcomeOK {
			outcome = ui.err(entry.Outcome)
			detail = entry.Error
		}
		if _, err := fmt.Fprintf(out, "%s %-11s %s %s %s\n",
			ui.dim(entry.StartedAt.Format(time.RFC3339)),
			entry.Operation,
			outcome,
			ui.dim(entry.Duration().Round(time.Millisecond).String()),
			detail,
		); err != nil {
			return err
		}
	}
	return nil
}

func writePruneResult(cmd *cobra.Command, removed int64, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return encodeJSON(out, struct {
			Removed int64 `json:"removed"`
		}{Removed: removed})
	}
	ui := newRenderer(out, asJSON)
	return writeKV(out, ui, "Removed", strconv.FormatInt(removed, 10))
}

func writeDone(cmd *cobra.Command, op, target string, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return encodeJSON(out, doneOutput{Operation: op, Target: target, Status: "ok"})
	}
	ui := newRenderer(out, asJSON)
	_, err := fmt.Fprintf(out, "%s %s %s\n", ui.ok("ok"), op, ui.dim(target))
	return err
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}
