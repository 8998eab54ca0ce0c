package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type style string

const (
	styleKey    style = "\x1b[1m\x1b[38;5;51m"
	styleOK     style = "\x1b[1m\x1b[38;5;82m"
	styleWarn   style = "\x1b[1m\x1b[38;5;214m"
	styleErr    style = "\x1b[1m\x1b[38;5;196m"
	styleAccent style = "\x1b[1m\x1b[38;5;201m"
	styleDim    style = "\x1b[2m"

	ansiReset = "\x1b[0m"
)

// changeStyles colors file statuses in human output.
var changeStyles = map[domain.ChangeKind]style{
	domain.ChangeNew:      styleOK,
	domain.ChangeModified: styleWarn,
	domain.ChangeDeleted:  styleErr,
	domain.ChangeRenamed:  styleAccent,
}

type renderer struct {
	color bool
}

func newRenderer(out io.Writer, asJSON bool) renderer {
	return renderer{color: colorEnabled(out, asJSON)}
}

func colorEnabled(out io.Writer, asJSON bool) bool {
	if asJSON || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	term := strings.TrimSpace(os.Getenv("TERM"))
	return term != "" && term != "dumb"
}

func (r renderer) paint(s style, value string) string {
	if !r.color || value == "" {
		return value
	}
	return string(s) + value + ansiReset
}

func (r renderer) key(value string) string    { return r.paint(styleKey, value) }
func (r renderer) ok(value string) string     { return r.paint(styleOK, value) }
func (r renderer) warn(value string) string   { return r.paint(styleWarn, value) }
func (r renderer) err(value string) string    { return r.paint(styleErr, value) }
func (r renderer) accent(value string) string { return r.paint(styleAccent, value) }
func (r renderer) dim(value string) string    { return r.paint(styleDim, value) }

func (r renderer) change(kind domain.ChangeKind) string {
	label := fmt.Sprintf("%-8s", kind)
	s, ok := changeStyles[kind]
	if !ok {
		s = styleDim
	}
	return r.paint(s, label)
}

// withSpinner runs fn while drawing a spinner with the elapsed time. Remote
// operations hold the volume lock, so fn is always awaited even after ctx
// ends; the label then reports that the run is being abandoned.
func withSpinner(ctx context.Context, out io.Writer, r renderer, label string, fn func() error) error {
	if !r.color {
		return fn()
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	frames := []string{"|", "/", "-", "\\"}
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	started := time.Now()
	status := label
	for frame := 0; ; frame++ {
		select {
		case err := <-done:
			fmt.Fprint(out, "\r\x1b[2K")
			return err
		case <-ticker.C:
			elapsed := time.Since(started).Truncate(time.Second)
			fmt.Fprintf(out, "\r\x1b[2K%s %s %s", frames[frame%len(frames)], r.dim(status), r.dim(elapsed.String()))
		case <-ctx.Done():
			status = label + " (cancelling)"
			ctx = context.Background()
		}
	}
}
