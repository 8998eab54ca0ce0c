package wikisyncsdk

import (
	"context"
	"strings"

	"github.com/osvaldoandrade/wikisync/internal/app/maintenance"
	"github.com/osvaldoandrade/wikisync/internal/bootstrap"
	"github.com/osvaldoandrade/wikisync/internal/config"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/infra/gitrepo"
)

type (
	SyncReport   = domain.SyncReport
	FileStatus   = domain.FileStatus
	ChangeKind   = domain.ChangeKind
	PullResult   = domain.PullResult
	PullOutcome  = domain.PullOutcome
	JournalEntry = domain.JournalEntry
)

const (
	ChangeNew      = domain.ChangeNew
	ChangeModified = domain.ChangeModified
	ChangeDeleted  = domain.ChangeDeleted
	ChangeRenamed  = domain.ChangeRenamed
	ChangeUnknown  = domain.ChangeUnknown

	PullUpToDate    = domain.PullUpToDate
	PullFastForward = domain.PullFastForward
	PullMerged      = domain.PullMerged
)

type VolumeInfo struct {
	Name      string
	Root      string
	Available bool
	Err       error
}

type CommitOptions struct {
	Message     string
	Files       []string
	AuthorName  string
	AuthorEmail string
}

// Client provides direct access to the sync engine.
type Client struct {
	cfg Config
	sys *bootstrap.System
}

// Open validates every volume and opens the journal when configured.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	engineCfg := config.Default()
	engineCfg.PoolSize = normalized.PoolSize
	engineCfg.JournalPath = normalized.JournalPath
	engineCfg.Git.SignCommits = normalized.SignCommits
	engineCfg.Git.SignKey = normalized.SignKey
	for _, vol := range normalized.Volumes {
		engineCfg.Volumes = append(engineCfg.Volumes, config.VolumeConfig{Name: vol.Name, Path: vol.Root})
	}

	opts := bootstrap.Options{Strict: normalized.Strict}
	if strings.TrimSpace(normalized.Token) != "" {
		opts.Credentials = &gitrepo.Credentials{Username: normalized.Username, Token: normalized.Token}
	}
	sys, err := bootstrap.Build(ctx, engineCfg, opts)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: normalized, sys: sys}, nil
}

// Close releases the journal. Operations still running in the background
// are not waited for.
func (c *Client) Close() error {
	return c.sys.Close()
}

func (c *Client) Volumes() []VolumeInfo {
	infos := c.sys.Engine.Volumes()
	out := make([]VolumeInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, VolumeInfo{Name: info.Name, Root: info.Root, Available: info.Available, Err: info.Err})
	}
	return out
}

func (c *Client) Status(ctx context.Context, volume string) (SyncReport, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.sys.Engine.Status(ctx, volume)
}

// Fetch downloads origin without touching the working tree.
func (c *Client) Fetch(ctx context.Context, volume string) (SyncReport, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.sys.Engine.Fetch(ctx, volume)
}

// Pull fetches origin and fast-forwards or merges the upstream branch.
func (c *Client) Pull(ctx context.Context, volume string) (PullResult, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.sys.Engine.Pull(ctx, volume)
}

func (c *Client) Push(ctx context.Context, volume string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.sys.Engine.Push(ctx, volume)
}

// Commit stages exactly opts.Files and returns the new commit hash.
func (c *Client) Commit(ctx context.Context, volume string, opts CommitOptions) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	result, err := c.sys.Engine.Commit(ctx, volume, domain.CommitRequest{
		Message:     opts.Message,
		Files:       opts.Files,
		AuthorName:  opts.AuthorName,
		AuthorEmail: opts.AuthorEmail,
	})
	if err != nil {
		return "", err
	}
	return result.Commit, nil
}

func (c *Client) Restore(ctx context.Context, volume string, files ...string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.sys.Engine.Restore(ctx, volume, domain.RestoreRequest{Files: files})
}

func (c *Client) AbortMerge(ctx context.Context, volume string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.sys.Engine.AbortMerge(ctx, volume)
}

// GC runs git gc; prune is passed as --prune=<prune> when set.
func (c *Client) GC(ctx context.Context, volume, prune string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.sys.Engine.GC(ctx, volume, maintenance.GCOptions{Prune: prune})
}

// History returns journal entries newest first; empty when the journal is
// disabled.
func (c *Client) History(ctx context.Context, volume string, limit int) ([]JournalEntry, error) {
	return c.sys.Engine.History(ctx, volume, limit)
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}
