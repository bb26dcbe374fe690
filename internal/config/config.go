// Package config loads goaltool settings from YAML, a .env file, and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full tool configuration.
type Config struct {
	Project     string            `yaml:"project"`
	SportsAPI   SportsAPIConfig   `yaml:"sports_api"`
	Local       LocalConfig       `yaml:"local"`
	Cache       CacheConfig       `yaml:"cache"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type SportsAPIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Timeout   string `yaml:"timeout"`
	Bookmaker int    `yaml:"bookmaker"`
}

// LocalConfig locates the device-scoped key/value database.
type LocalConfig struct {
	Database string `yaml:"database"`
}

type CacheConfig struct {
	TTL string `yaml:"ttl"`
}

type LeaderboardConfig struct {
	BatchSize int `yaml:"batch_size"`
	Top       int `yaml:"top"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MaxBatchSize is the most writes a single document-store batch accepts.
const MaxBatchSize = 500

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		SportsAPI: SportsAPIConfig{
			BaseURL:   "https://v3.football.api-sports.io",
			Timeout:   "20s",
			Bookmaker: 8,
		},
		Local: LocalConfig{
			Database: defaultDatabase(),
		},
		Cache: CacheConfig{
			TTL: "1440h",
		},
		Leaderboard: LeaderboardConfig{
			BatchSize: MaxBatchSize,
			Top:       100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultDatabase() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "goaltool", "local.db")
}

// Load reads path over the defaults, applies the environment, and validates the result. A missing file is not an
// error. An empty path skips the file. A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if project := os.Getenv("GCP_PROJECT"); project != "" {
		c.Project = project
	}
	if key := os.Getenv("SPORTS_API_KEY"); key != "" {
		c.SportsAPI.Key = key
	}
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.SportsAPI.Timeout); err != nil {
		return fmt.Errorf("invalid sports_api.timeout %q: %w", c.SportsAPI.Timeout, err)
	}
	if ttl, err := time.ParseDuration(c.Cache.TTL); err != nil || ttl <= 0 {
		return fmt.Errorf("invalid cache.ttl %q", c.Cache.TTL)
	}
	if c.Leaderboard.BatchSize <= 0 || c.Leaderboard.BatchSize > MaxBatchSize {
		return fmt.Errorf("leaderboard.batch_size must be between 1 and %d, got %d", MaxBatchSize, c.Leaderboard.BatchSize)
	}
	if c.Leaderboard.Top <= 0 {
		return fmt.Errorf("leaderboard.top must be positive, got %d", c.Leaderboard.Top)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	return nil
}

// SportsAPITimeout returns the request timeout as a duration.
func (c *Config) SportsAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.SportsAPI.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// CacheTTL returns how long catalog lists stay cached.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 60 * 24 * time.Hour
	}
	return d
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
