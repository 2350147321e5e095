// Package config loads the converter settings from an optional YAML file.
//
// Values are resolved in order: built-in defaults, then the YAML file named
// by --config (or the PARQUET2ROOT_CONFIG environment variable), then
// command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding a default config
// file path.
const EnvConfigPath = "PARQUET2ROOT_CONFIG"

// DefaultBatchSize is the number of rows read per batch.
const DefaultBatchSize = 100000

// Config holds every tunable of a conversion run.
type Config struct {
	BatchSize        int    `yaml:"batch_size"`
	Format           string `yaml:"format"`
	Compression      string `yaml:"compression"`
	CompressionLevel int    `yaml:"compression_level"`
	BasketSize       int    `yaml:"basket_size"`
	Title            string `yaml:"title"`
	ValidateSchemas  bool   `yaml:"validate_schemas"`
	Progress         bool   `yaml:"progress"`
	LogLevel         string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BatchSize:        DefaultBatchSize,
		Compression:      "zlib",
		CompressionLevel: 1,
		ValidateSchemas:  true,
		Progress:         true,
		LogLevel:         "warn",
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path falls back to $PARQUET2ROOT_CONFIG; when both are empty the defaults
// are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the converter cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch_size must be a positive integer, got %d", c.BatchSize))
	}
	switch strings.ToLower(c.Format) {
	case "", "root", "csv", "jsonl", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported format '%s'", c.Format))
	}
	switch strings.ToLower(c.Compression) {
	case "", "zlib", "lz4", "zstd", "lzma", "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported compression '%s'", c.Compression))
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("compression_level must be between 0 and 9, got %d", c.CompressionLevel))
	}
	if c.BasketSize < 0 {
		errs = append(errs, fmt.Errorf("basket_size must not be negative, got %d", c.BasketSize))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err)
	}
	return lvl, nil
}
