package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osvaldoandrade/wikisync/internal/app/paths"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/platform"
)

const (
	EnvConfig         = "WIKISYNC_CONFIG"
	EnvListen         = "WIKISYNC_LISTEN"
	EnvVolumes        = "WIKISYNC_VOLUMES"
	EnvJournal        = "WIKISYNC_JOURNAL"
	EnvPoolSize       = "WIKISYNC_POOL_SIZE"
	EnvRequestTimeout = "WIKISYNC_REQUEST_TIMEOUT"
	EnvLogLevel       = "WIKISYNC_LOG_LEVEL"
	EnvLogFormat      = "WIKISYNC_LOG_FORMAT"

	DefaultListen         = ":8080"
	DefaultRequestTimeout = 60 * time.Second
)

var ErrInvalidConfig = errors.New("invalid configuration")

type VolumeConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type GitConfig struct {
	UsernameEnv string `yaml:"username_env,omitempty"`
	TokenEnv    string `yaml:"token_env,omitempty"`
	SignCommits bool   `yaml:"sign_commits,omitempty"`
	SignKey     string `yaml:"sign_key,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Listen         string         `yaml:"listen"`
	Volumes        []VolumeConfig `yaml:"volumes"`
	PoolSize       int            `yaml:"pool_size,omitempty"`
	JournalPath    string         `yaml:"journal_path,omitempty"`
	RequestTimeout time.Duration  `yaml:"request_timeout,omitempty"`
	Git            GitConfig      `yaml:"git"`
	Log            LogConfig      `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Listen:         DefaultListen,
		RequestTimeout: DefaultRequestTimeout,
		Git: GitConfig{
			UsernameEnv: "GIT_USERNAME",
			TokenEnv:    "GIT_TOKEN",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with the WIKISYNC_* variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if value := strings.TrimSpace(getenv(EnvListen)); value != "" {
		c.Listen = value
	}
	if value := strings.TrimSpace(getenv(EnvJournal)); value != "" {
		c.JournalPath = value
	}
	if value := strings.TrimSpace(getenv(EnvLogLevel)); value != "" {
		c.Log.Level = value
	}
	if value := strings.TrimSpace(getenv(EnvLogFormat)); value != "" {
		c.Log.Format = value
	}
	if value := strings.TrimSpace(getenv(EnvPoolSize)); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvPoolSize, err)
		}
		c.PoolSize = size
	}
	if value := strings.TrimSpace(getenv(EnvRequestTimeout)); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvRequestTimeout, err)
		}
		c.RequestTimeout = timeout
	}
	if value := strings.TrimSpace(getenv(EnvVolumes)); value != "" {
		volumes, err := ParseVolumes(value)
		if err != nil {
			return err
		}
		c.Volumes = volumes
	}
	return nil
}

// ParseVolumes reads the "name=path,name=path" form.
func ParseVolumes(value string) ([]VolumeConfig, error) {
	var volumes []VolumeConfig
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, path, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("%w: volume %q must be name=path", ErrInvalidConfig, item)
		}
		volumes = append(volumes, VolumeConfig{
			Name: strings.TrimSpace(name),
			Path: strings.TrimSpace(path),
		})
	}
	return volumes, nil
}

// Validate checks the configuration and normalizes volume paths to
// absolute form.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Volumes))
	for i := range c.Volumes {
		vol := &c.Volumes[i]
		vol.Name = strings.TrimSpace(vol.Name)
		vol.Path = strings.TrimSpace(vol.Path)
		if vol.Name == "" {
			return fmt.Errorf("%w: volume %d has no name", ErrInvalidConfig, i)
		}
		if strings.ContainsAny(vol.Name, "/\\") {
			return fmt.Errorf("%w: volume name %q contains a path separator", ErrInvalidConfig, vol.Name)
		}
		if _, ok := seen[vol.Name]; ok {
			return fmt.Errorf("%w: duplicate volume %q", ErrInvalidConfig, vol.Name)
		}
		seen[vol.Name] = struct{}{}
		if vol.Path == "" {
			return fmt.Errorf("%w: volume %q has no path", ErrInvalidConfig, vol.Name)
		}
		abs, err := paths.NormalizeRepoPath(vol.Path)
		if err != nil {
			return fmt.Errorf("%w: volume %q: %w", ErrInvalidConfig, vol.Name, err)
		}
		vol.Path = abs
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool_size must not be negative", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := platform.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := platform.ParseLogFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) DomainVolumes() []domain.Volume {
	volumes := make([]domain.Volume, 0, len(c.Volumes))
	for _, vol := range c.Volumes {
		volumes = append(volumes, domain.Volume{Name: vol.Name, Root: vol.Path})
	}
	return volumes
}
