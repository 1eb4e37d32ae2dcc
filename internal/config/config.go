// Package config holds all poursuite configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all poursuite configuration.
type Config struct {
	// Environment: prod, dev, local
	Env string `yaml:"env"`

	// Directory containing the shard database files
	ShardDir string `yaml:"shard_dir"`

	// Directory for exported CSV files
	OutputDir string `yaml:"output_dir"`

	Search  SearchConfig  `yaml:"search"`
	HTTP    HTTPConfig    `yaml:"http"`
	Scraper ScraperConfig `yaml:"scraper"`
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig configures the sharded search engine.
type SearchConfig struct {
	// Worker pool cap for the per-shard fan-out
	MaxWorkers int `yaml:"max_workers"`

	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`

	// Wall-clock deadline applied by the HTTP layer. The CLI sets none.
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	// Value expected in the X-API-Key header. Empty means the server
	// refuses protected requests until the operator sets one.
	APIKey string `yaml:"api_key"`
}

// ScraperConfig configures the eSAJ scraper.
type ScraperConfig struct {
	BaseURL     string `yaml:"base_url"`
	MaxBrowsers int    `yaml:"max_browsers"`
	BatchSize   int    `yaml:"batch_size"`
	OutputDir   string `yaml:"output_dir"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Env:       "local",
		ShardDir:  "./databases",
		OutputDir: "./search-results",
		Search: SearchConfig{
			MaxWorkers:      16,
			DefaultPageSize: 100,
			MaxPageSize:     500,
			Timeout:         30 * time.Second,
		},
		HTTP: HTTPConfig{
			ListenAddr: ":8000",
		},
		Scraper: ScraperConfig{
			BaseURL:     "https://esaj.tjsp.jus.br/cpopg/open.do",
			MaxBrowsers: 4,
			BatchSize:   50,
			OutputDir:   "./esaj",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the YAML file at path (if it exists),
// applies POURSUITE_* environment overrides, and fills in defaults.
// A missing file is not an error; env vars alone are a valid setup.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Env, "POURSUITE_ENV")
	setString(&c.ShardDir, "POURSUITE_SHARD_DIR")
	setString(&c.OutputDir, "POURSUITE_OUTPUT_DIR")
	setString(&c.HTTP.ListenAddr, "POURSUITE_LISTEN_ADDR")
	setString(&c.HTTP.APIKey, "POURSUITE_API_KEY")
	setString(&c.Scraper.OutputDir, "POURSUITE_ESAJ_OUTPUT_DIR")
	setString(&c.Logging.Level, "POURSUITE_LOG_LEVEL")
	setInt(&c.Search.MaxWorkers, "POURSUITE_MAX_WORKERS")
	setInt(&c.Scraper.MaxBrowsers, "POURSUITE_MAX_BROWSERS")
	setInt(&c.Scraper.BatchSize, "POURSUITE_BATCH_SIZE")

	if v := os.Getenv("POURSUITE_SEARCH_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Search.Timeout = time.Duration(secs) * time.Second
		}
	}
}

func (c *Config) validate() error {
	if c.Search.MaxWorkers < 1 {
		return fmt.Errorf("search.max_workers must be >= 1, got %d", c.Search.MaxWorkers)
	}
	if c.Search.MaxPageSize < 1 {
		return fmt.Errorf("search.max_page_size must be >= 1, got %d", c.Search.MaxPageSize)
	}
	if c.Search.DefaultPageSize < 1 || c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size must be in [1, %d], got %d",
			c.Search.MaxPageSize, c.Search.DefaultPageSize)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
