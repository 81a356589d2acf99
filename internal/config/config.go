// Package config holds runtime settings: built-in defaults, an optional
// TOML file on top, and API credentials from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/fragmede/ingest/internal/thread"
)

const (
	EnvNewsAPIKey  = "NEWSAPI_KEY"
	EnvGNewsKey    = "GNEWS_API_KEY"
	EnvNewsDataKey = "NEWSDATA_API_KEY"
	EnvTheNewsKey  = "THENEWS_API_KEY"
	EnvCongressKey = "CONGRESS_API_KEY"
	// EnvConfigPath overrides the default config file location.
	EnvConfigPath = "INGEST_CONFIG"
)

type Config struct {
	LogLevel    string `toml:"log_level"`
	LogPath     string `toml:"log_path"`
	HistoryPath string `toml:"history_path"`
	// Concurrency caps how many sources `all` runs at once.
	Concurrency int `toml:"concurrency"`

	Thread  ThreadConfig  `toml:"thread"`
	HTTP    HTTPConfig    `toml:"http"`
	Arxiv   ArxivConfig   `toml:"arxiv"`
	Sources SourcesConfig `toml:"sources"`

	// Credentials are only ever read from the environment.
	NewsAPIKey  string `toml:"-"`
	GNewsKey    string `toml:"-"`
	NewsDataKey string `toml:"-"`
	TheNewsKey  string `toml:"-"`
	CongressKey string `toml:"-"`
}

type ThreadConfig struct {
	MaxComments  int           `toml:"max_comments"`
	MaxDepth     int           `toml:"max_depth"`
	MaxChildren  int           `toml:"max_children"`
	RequestDelay time.Duration `toml:"request_delay"`
}

type HTTPConfig struct {
	Timeout   time.Duration `toml:"timeout"`
	UserAgent string        `toml:"user_agent"`
}

type ArxivConfig struct {
	Category   string `toml:"category"`
	MaxResults int    `toml:"max_results"`
}

type SourcesConfig struct {
	// Enabled lists the sources `all` runs, in order. Empty means all.
	Enabled []string `toml:"enabled"`
}

func Default() *Config {
	dir := filepath.Join(userConfigDir(), "ingest")
	t := thread.DefaultConfig()
	return &Config{
		LogLevel:    "warn",
		HistoryPath: filepath.Join(dir, "history.db"),
		Concurrency: 4,
		Thread: ThreadConfig{
			MaxComments:  t.MaxComments,
			MaxDepth:     t.MaxDepth,
			MaxChildren:  t.MaxChildrenPerNode,
			RequestDelay: t.InterRequestDelay,
		},
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "ingest/1.0 (+https://github.com/fragmede/ingest)",
		},
		Arxiv: ArxivConfig{
			Category:   "cs.AI",
			MaxResults: 5,
		},
	}
}

// DefaultPath returns the config file location: $INGEST_CONFIG, else
// <user config dir>/ingest/config.toml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(userConfigDir(), "ingest", "config.toml")
}

// Load reads path (DefaultPath when empty) over the defaults, then picks up
// credentials from the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.NewsAPIKey = ReadEnv(EnvNewsAPIKey)
	cfg.GNewsKey = ReadEnv(EnvGNewsKey)
	cfg.NewsDataKey = ReadEnv(EnvNewsDataKey)
	cfg.TheNewsKey = ReadEnv(EnvTheNewsKey)
	cfg.CongressKey = ReadEnv(EnvCongressKey)
	return cfg, nil
}

// Validate rejects values that cannot be meaningfully defaulted.
func (c *Config) Validate() error {
	if c.Thread.MaxDepth < 0 {
		return fmt.Errorf("thread.max_depth must be >= 0, got %d", c.Thread.MaxDepth)
	}
	if c.Thread.RequestDelay < 0 {
		return fmt.Errorf("thread.request_delay must be >= 0, got %s", c.Thread.RequestDelay)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.Arxiv.MaxResults < 1 {
		return fmt.Errorf("arxiv.max_results must be >= 1, got %d", c.Arxiv.MaxResults)
	}
	return nil
}

// ThreadConfig converts the [thread] section for the aggregator.
func (c *Config) ThreadConfig() thread.Config {
	return thread.Config{
		MaxComments:        c.Thread.MaxComments,
		MaxDepth:           c.Thread.MaxDepth,
		MaxChildrenPerNode: c.Thread.MaxChildren,
		InterRequestDelay:  c.Thread.RequestDelay,
	}
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
