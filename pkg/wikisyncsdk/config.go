package wikisyncsdk

import (
	"strings"
	"time"
)

type Volume struct {
	Name string
	Root string
}

// Config defines the SDK behavior for direct engine access.
type Config struct {
	Volumes []Volume
	// PoolSize bounds concurrently running git operations. Zero picks a
	// default from the CPU count.
	PoolSize int
	// JournalPath enables the sqlite operation journal when set.
	JournalPath string
	// Token and Username authenticate fetch and push. An empty token falls
	// back to GIT_TOKEN.
	Token       string
	Username    string
	SignCommits bool
	SignKey     string
	// Strict fails Open when a volume root is not a working tree.
	Strict bool
	// Timeout bounds each call when the caller's context has no deadline.
	Timeout time.Duration
}

func DefaultConfig(volumes ...Volume) Config {
	return Config{
		Volumes: volumes,
		Timeout: 2 * time.Minute,
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	if len(cfg.Volumes) == 0 {
		return cfg, ErrNoVolumes
	}
	volumes := make([]Volume, 0, len(cfg.Volumes))
	for _, vol := range cfg.Volumes {
		volumes = append(volumes, Volume{Name: strings.TrimSpace(vol.Name), Root: strings.TrimSpace(vol.Root)})
	}
	cfg.Volumes = volumes
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	return cfg, nil
}
