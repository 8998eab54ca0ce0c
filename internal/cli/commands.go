package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osvaldoandrade/wikisync/internal/app/maintenance"
	repoapp "github.com/osvaldoandrade/wikisync/internal/app/repo"
	"github.com/osvaldoandrade/wikisync/internal/bootstrap"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/infra/gitrepo"
)

func newVolumesCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "volumes",
		Short: "List configured volumes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				return writeVolumes(cmd, sys.Engine.Volumes(), opts.JSONOutput)
			})
		},
	}
}

func newStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <volume>",
		Short: "Show changed files and ahead/behind counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				report, err := sys.Engine.Status(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeReport(cmd, report, opts.JSONOutput)
			})
		},
	}
}

func newFetchCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <volume>",
		Short: "Download refs and objects from origin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				var report domain.SyncReport
				err := spin(cmd, opts, "Fetching origin", func() error {
					var err error
					report, err = sys.Engine.Fetch(cmd.Context(), args[0])
					return err
				})
				if err != nil {
					return err
				}
				return writeReport(cmd, report, opts.JSONOutput)
			})
		},
	}
}

func newPullCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <volume>",
		Short: "Fetch origin and merge the upstream branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				var result domain.PullResult
				err := spin(cmd, opts, "Pulling origin", func() error {
					var err error
					result, err = sys.Engine.Pull(cmd.Context(), args[0])
					return err
				})
				if err != nil {
					return err
				}
				return writePullResult(cmd, result, opts.JSONOutput)
			})
		},
	}
}

func newPushCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push <volume>",
		Short: "Push the current branch to origin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				err := spin(cmd, opts, "Pushing origin", func() error {
					return sys.Engine.Push(cmd.Context(), args[0])
				})
				if err != nil {
					return err
				}
				return writeDone(cmd, "push", args[0], opts.JSONOutput)
			})
		},
	}
}

func newCommitCmd(opts *RootOptions) *cobra.Command {
	var message, authorName, authorEmail string
	cmd := &cobra.Command{
		Use:   "commit <volume> <path>...",
		Short: "Stage and commit the listed paths",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CommitRequest{
				Message:     message,
				Files:       args[1:],
				AuthorName:  authorName,
				AuthorEmail: authorEmail,
			}
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				result, err := sys.Engine.Commit(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				return writeCommitResult(cmd, result, opts.JSONOutput)
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	cmd.Flags().StringVar(&authorName, "author-name", envDefault("GIT_AUTHOR_NAME", ""), "Author name")
	cmd.Flags().StringVar(&authorEmail, "author-email", envDefault("GIT_AUTHOR_EMAIL", ""), "Author email")
	return cmd
}

func newRestoreCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <volume> <path>...",
		Short: "Discard changes to the listed paths",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				if err := sys.Engine.Restore(cmd.Context(), args[0], domain.RestoreRequest{Files: args[1:]}); err != nil {
					return err
				}
				return writeDone(cmd, "restore", args[0], opts.JSONOutput)
			})
		},
	}
}

func newAbortMergeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "abort-merge <volume>",
		Short: "Abandon an unfinished merge left by pull",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				if err := sys.Engine.AbortMerge(cmd.Context(), args[0]); err != nil {
					return err
				}
				return writeDone(cmd, "abort-merge", args[0], opts.JSONOutput)
			})
		},
	}
}

func newHistoryCmd(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <volume>",
		Short: "Show recent sync operations of a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				entries, err := sys.Engine.History(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				return writeHistory(cmd, entries, opts.JSONOutput)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.AddCommand(newHistoryPruneCmd(opts))
	return cmd
}

func newHistoryPruneCmd(opts *RootOptions) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop old journal entries, keeping the newest per volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				if sys.Journal == nil {
					return writeDone(cmd, "prune", "journal disabled", opts.JSONOutput)
				}
				removed, err := sys.Journal.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				return writePruneResult(cmd, removed, opts.JSONOutput)
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 1000, "Entries to keep per volume")
	return cmd
}

func newGCCmd(opts *RootOptions) *cobra.Command {
	var prune string
	cmd := &cobra.Command{
		Use:   "gc <volume>",
		Short: "Run git gc on a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSystem(cmd, opts, func(sys *bootstrap.System) error {
				err := spin(cmd, opts, "Compacting objects", func() error {
					return sys.Engine.GC(cmd.Context(), args[0], maintenance.GCOptions{Prune: prune})
				})
				if err != nil {
					return err
				}
				return writeDone(cmd, "gc", args[0], opts.JSONOutput)
			})
		},
	}
	cmd.Flags().StringVar(&prune, "prune", "", "Prune loose objects older than this date (e.g. now, 2.weeks.ago)")
	return cmd
}

func newInitCmd(opts *RootOptions) *cobra.Command {
	var branch, remote string
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Create an empty volume repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := repoapp.NewInitService(newGitStore(opts))
			if err := service.Init(cmd.Context(), args[0], repoapp.InitOptions{Branch: branch, RemoteURL: remote}); err != nil {
				return err
			}
			return writeDone(cmd, "init", args[0], opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&branch, "branch", repoapp.DefaultBranch, "Initial branch")
	cmd.Flags().StringVar(&remote, "remote", "", "Remote URL to configure as origin")
	return cmd
}

func newCloneCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <url> [path]",
		Short: "Clone a remote into a new volume",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			service := repoapp.NewCloneService(newGitStore(opts))
			err := spin(cmd, opts, "Cloning "+args[0], func() error {
				return service.Clone(cmd.Context(), args[0], path)
			})
			if err != nil {
				return err
			}
			return writeDone(cmd, "clone", args[0], opts.JSONOutput)
		},
	}
}

func newRemoteCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage the origin of a volume",
		RunE:  runHelp,
	}
	cmd.AddCommand(newRemoteSetCmd(opts))
	return cmd
}

func newRemoteSetCmd(opts *RootOptions) *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "set <path> <url>",
		Short: "Point origin at url and track origin/<branch>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := repoapp.NewInitService(newGitStore(opts))
			if err := service.SetOrigin(cmd.Context(), args[0], branch, args[1]); err != nil {
				return err
			}
			return writeDone(cmd, "remote set", args[0], opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&branch, "branch", repoapp.DefaultBranch, "Branch that tracks origin")
	return cmd
}

func newGitStore(opts *RootOptions) *gitrepo.Store {
	cfg := opts.Config
	return gitrepo.NewStoreWithOptions(gitrepo.StoreOptions{
		SignCommits: cfg.Git.SignCommits || strings.TrimSpace(cfg.Git.SignKey) != "",
		SignKey:     cfg.Git.SignKey,
		Credentials: gitrepo.CredentialsFromEnv(cfg.Git.TokenEnv, cfg.Git.UsernameEnv),
	})
}

// withSystem builds the engine from the loaded configuration for one
// command and closes it afterwards.
func withSystem(cmd *cobra.Command, opts *RootOptions, fn func(sys *bootstrap.System) error) error {
	sys, err := bootstrap.Build(commandContext(cmd), opts.Config, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer sys.Close()
	return fn(sys)
}

func spin(cmd *cobra.Command, opts *RootOptions, label string, fn func() error) error {
	out := cmd.ErrOrStderr()
	return withSpinner(commandContext(cmd), out, newRenderer(out, opts.JSONOutput), label, fn)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runHelp(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
