package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultURL is the tile endpoint used when none is configured.
const DefaultURL = "https://mt0.google.com/vt?lyrs=p&x={x}&s=&y={y}&z={z}"

// MaxZoomLevel is the deepest zoom level the downloader will request.
const MaxZoomLevel = 15

// Config defines configuration for the maptiles CLI.
type Config struct {
	URL      string        `yaml:"url"`
	Country  string        `yaml:"country"`
	CacheDir string        `yaml:"cache_dir"`
	MinZoom  int           `yaml:"min_zoom"`
	MaxZoom  int           `yaml:"max_zoom"`
	Workers  int           `yaml:"workers"`
	TTL      time.Duration `yaml:"ttl"`
	Progress bool          `yaml:"progress"`
	Retry    RetryConfig   `yaml:"retry"`
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		URL:      DefaultURL,
		CacheDir: "cache",
		MinZoom:  0,
		MaxZoom:  MaxZoomLevel,
		Workers:  4,
		TTL:      168 * time.Hour, // one week
		Retry: RetryConfig{
			Attempts:   3,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	URL      string          `yaml:"url"`
	Country  string          `yaml:"country"`
	CacheDir string          `yaml:"cache_dir"`
	MinZoom  *int            `yaml:"min_zoom"`
	MaxZoom  *int            `yaml:"max_zoom"`
	Workers  int             `yaml:"workers"`
	TTL      string          `yaml:"ttl"`
	Progress bool            `yaml:"progress"`
	Retry    yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Country != "" {
		cfg.Country = yc.Country
	}
	if yc.CacheDir != "" {
		cfg.CacheDir = yc.CacheDir
	}
	if yc.MinZoom != nil {
		cfg.MinZoom = *yc.MinZoom
	}
	if yc.MaxZoom != nil {
		cfg.MaxZoom = *yc.MaxZoom
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.TTL != "" {
		d, err := time.ParseDuration(yc.TTL)
		if err != nil {
			return Config{}, fmt.Errorf("parse ttl: %w", err)
		}
		cfg.TTL = d
	}
	cfg.Progress = yc.Progress
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the MAPTILES_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MAPTILES_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("MAPTILES_COUNTRY"); v != "" {
		c.Country = v
	}
	if v := os.Getenv("MAPTILES_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("MAPTILES_MIN_ZOOM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MAPTILES_MIN_ZOOM: %w", err)
		}
		c.MinZoom = n
	}
	if v := os.Getenv("MAPTILES_MAX_ZOOM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MAPTILES_MAX_ZOOM: %w", err)
		}
		c.MaxZoom = n
	}
	if v := os.Getenv("MAPTILES_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MAPTILES_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("MAPTILES_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MAPTILES_TTL: %w", err)
		}
		c.TTL = d
	}
	if v := os.Getenv("MAPTILES_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("MAPTILES_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MAPTILES_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("MAPTILES_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MAPTILES_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("MAPTILES_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MAPTILES_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.CacheDir == "" {
		return errors.New("config: cache_dir is required")
	}
	if c.MinZoom < 0 {
		return errors.New("config: min_zoom must be non-negative")
	}
	if c.MaxZoom > MaxZoomLevel {
		return fmt.Errorf("config: max_zoom must not exceed %d", MaxZoomLevel)
	}
	if c.MinZoom > c.MaxZoom {
		return errors.New("config: zoom range is empty")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.TTL <= 0 {
		return errors.New("config: ttl must be positive")
	}
	return nil
}
