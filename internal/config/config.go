// Package config provides unified configuration loading for the extraction
// engine. Supports YAML files, environment variables, and programmatic
// overrides.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the extraction engine.
type Config struct {
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Recognition   RecognitionConfig   `yaml:"recognition"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ExtractionConfig holds classification and text-handling settings.
type ExtractionConfig struct {
	// MinChars is the number of non-whitespace characters a page's embedded
	// text must contain to be considered text-rich.
	MinChars int `yaml:"min_chars"`
}

// RecognitionConfig holds rasterization and recognition-pool settings.
type RecognitionConfig struct {
	// DPI is the rasterization resolution.
	DPI float64 `yaml:"dpi"`
	// MaxImageDimension is the long-edge size above which a rasterized page
	// is downscaled before recognition.
	MaxImageDimension int `yaml:"max_image_dimension"`
	// ResizedDimension is the long-edge target when downscaling.
	ResizedDimension int `yaml:"resized_dimension"`
	// Languages is the default engine language hint, e.g. "eng+jpn".
	Languages string `yaml:"languages"`
	// Workers is the recognition pool width. Zero means 2x logical cores.
	Workers int `yaml:"workers"`
	// PoolTimeout bounds a whole recognition batch. Pages still pending when
	// it expires are reported as engine timeouts, not dropped. Zero disables
	// the bound.
	PoolTimeout time.Duration `yaml:"pool_timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json or console
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with the engine's stock settings.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			MinChars: 50,
		},
		Recognition: RecognitionConfig{
			DPI:               150,
			MaxImageDimension: 3000,
			ResizedDimension:  2000,
			Languages:         "eng",
			Workers:           0,
			PoolTimeout:       0,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Extraction.MinChars < 0 {
		return fmt.Errorf("extraction.min_chars must be >= 0, got %d", c.Extraction.MinChars)
	}
	if c.Recognition.DPI <= 0 {
		return fmt.Errorf("recognition.dpi must be > 0, got %v", c.Recognition.DPI)
	}
	if c.Recognition.ResizedDimension <= 0 {
		return fmt.Errorf("recognition.resized_dimension must be > 0, got %d", c.Recognition.ResizedDimension)
	}
	if c.Recognition.MaxImageDimension < c.Recognition.ResizedDimension {
		return fmt.Errorf("recognition.max_image_dimension (%d) must be >= resized_dimension (%d)",
			c.Recognition.MaxImageDimension, c.Recognition.ResizedDimension)
	}
	if c.Recognition.Workers < 0 {
		return fmt.Errorf("recognition.workers must be >= 0, got %d", c.Recognition.Workers)
	}
	return nil
}

// PoolWorkers resolves the recognition pool width.
func (c *Config) PoolWorkers() int {
	if c.Recognition.Workers > 0 {
		return c.Recognition.Workers
	}
	return 2 * runtime.NumCPU()
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EXTRACTOR_MIN_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Extraction.MinChars = n
		}
	}

	if v := os.Getenv("EXTRACTOR_DPI"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Recognition.DPI = f
		}
	}

	if v := os.Getenv("EXTRACTOR_LANGUAGES"); v != "" {
		cfg.Recognition.Languages = v
	}

	if v := os.Getenv("EXTRACTOR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Recognition.Workers = n
		}
	}

	if v := os.Getenv("EXTRACTOR_POOL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Recognition.PoolTimeout = d
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
