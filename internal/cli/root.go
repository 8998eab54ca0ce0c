package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osvaldoandrade/wikisync/internal/config"
	"github.com/osvaldoandrade/wikisync/internal/platform"
)

type RootOptions struct {
	ConfigPath string
	JSONOutput bool
	LogLevel   string
	LogFormat  string
	Config     *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{
		ConfigPath: envDefault(config.EnvConfig, ""),
		LogLevel:   envDefault(config.EnvLogLevel, ""),
		LogFormat:  envDefault(config.EnvLogFormat, ""),
	}
	cmd := &cobra.Command{
		Use:           "wikisync",
		Short:         "Git-backed wiki volume synchronization",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyEnv(os.Getenv); err != nil {
				return err
			}
			if strings.TrimSpace(opts.LogLevel) != "" {
				cfg.Log.Level = opts.LogLevel
			}
			if strings.TrimSpace(opts.LogFormat) != "" {
				cfg.Log.Format = opts.LogFormat
			}
			if _, err := platform.ConfigureLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to the YAML configuration file")
	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")

	cmd.AddCommand(
		newServeCmd(opts),
		newVolumesCmd(opts),
		newStatusCmd(opts),
		newFetchCmd(opts),
		newPullCmd(opts),
		newPushCmd(opts),
		newCommitCmd(opts),
		newRestoreCmd(opts),
		newAbortMergeCmd(opts),
		newHistoryCmd(opts),
		newGCCmd(opts),
		newInitCmd(opts),
		newCloneCmd(opts),
		newRemoteCmd(opts),
	)

	return cmd
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBoolDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
