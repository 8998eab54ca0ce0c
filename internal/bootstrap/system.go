package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osvaldoandrade/wikisync/internal/app/gitsync"
	"github.com/osvaldoandrade/wikisync/internal/app/volume"
	"github.com/osvaldoandrade/wikisync/internal/config"
	"github.com/osvaldoandrade/wikisync/internal/infra/gitrepo"
	"github.com/osvaldoandrade/wikisync/internal/infra/ident"
	"github.com/osvaldoandrade/wikisync/internal/infra/journal"
)

var ErrUnavailableVolumes = errors.New("one or more volumes are unavailable")

type Options struct {
	// Strict refuses to start when any volume fails validation.
	Strict bool
	// Credentials replaces the token and username read from the environment.
	Credentials *gitrepo.Credentials
}

// System is the assembled engine plus the resources it owns.
type System struct {
	Config   *config.Config
	Store    *gitrepo.Store
	Registry *volume.Registry
	Engine   *gitsync.Engine
	Journal  *journal.Store
}

func Build(ctx context.Context, cfg *config.Config, opts Options) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	creds := gitrepo.CredentialsFromEnv(cfg.Git.TokenEnv, cfg.Git.UsernameEnv)
	if opts.Credentials != nil {
		creds = *opts.Credentials
	}
	store := gitrepo.NewStoreWithOptions(gitrepo.StoreOptions{
		SignCommits: cfg.Git.SignCommits || strings.TrimSpace(cfg.Git.SignKey) != "",
		SignKey:     cfg.Git.SignKey,
		Credentials: creds,
	})

	sys := &System{Config: cfg, Store: store}

	registryOpts := volume.Options{
		PoolSize: cfg.PoolSize,
		IDs:      ident.NewULIDGenerator(),
	}
	var reader gitsync.JournalReader
	if path := strings.TrimSpace(cfg.JournalPath); path != "" {
		journalStore, err := journal.OpenWithOptions(path, journal.OpenOptions{Fast: true})
		if err != nil {
			return nil, err
		}
		sys.Journal = journalStore
		registryOpts.Recorder = journalStore
		reader = journalStore
	}

	registry, err := volume.NewRegistry(ctx, cfg.DomainVolumes(), store, registryOpts)
	if err != nil {
		_ = sys.Close()
		return nil, err
	}
	if unavailable := registry.Unavailable(); opts.Strict && len(unavailable) > 0 {
		_ = sys.Close()
		names := make([]string, 0, len(unavailable))
		for _, info := range unavailable {
			names = append(names, info.Name)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailableVolumes, strings.Join(names, ", "))
	}

	sys.Registry = registry
	sys.Engine = gitsync.NewEngine(registry, store, reader)
	slog.Debug("engine ready", "volumes", len(cfg.Volumes), "pool", registry.Pool().Size(), "journal", cfg.JournalPath)
	return sys, nil
}

func (s *System) Close() error {
	if s == nil || s.Journal == nil {
		return nil
	}
	return s.Journal.Close()
}
