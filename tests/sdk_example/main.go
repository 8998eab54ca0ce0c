package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/osvaldoandrade/wikisync/pkg/wikisyncsdk"
)

func main() {
	root := os.Getenv("WIKISYNC_VOLUME")
	if root == "" {
		fmt.Fprintln(os.Stderr, "WIKISYNC_VOLUME is required (path to a wiki working tree)")
		os.Exit(1)
	}

	cfg := wikisyncsdk.DefaultConfig(wikisyncsdk.Volume{Name: "wiki", Root: root})
	cfg.Timeout = 30 * time.Second

	ctx := context.Background()
	client, err := wikisyncsdk.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	result, err := client.Pull(ctx, "wiki")
	switch {
	case errors.Is(err, wikisyncsdk.ErrMergeConflict):
		fmt.Fprintln(os.Stderr, "pull left conflicts; resolve them and commit")
	case err != nil:
		fmt.Fprintf(os.Stderr, "pull: %v\n", err)
	default:
		fmt.Printf("pull outcome=%s head=%s\n", result.Outcome, result.Head)
	}

	report, err := client.Status(ctx, "wiki")
	if err != nil {
		fmt.Fprintf(os.Stderr, "status: %v\n", err)
		return
	}
	fmt.Printf("branch=%s ahead=%d behind=%d\n", report.Branch, report.CommitsAhead, report.CommitsBehind)
	for _, file := range report.Files {
		fmt.Printf("%-8s %s\n", file.Status, file.Path)
	}
}
