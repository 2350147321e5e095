package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 100000, cfg.BatchSize)
	assert.True(t, cfg.ValidateSchemas)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
batch_size: 5000
compression: lz4
compression_level: 4
basket_size: 65536
title: detector events
validate_schemas: false
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.BatchSize)
	assert.Equal(t, "lz4", cfg.Compression)
	assert.Equal(t, 4, cfg.CompressionLevel)
	assert.Equal(t, 65536, cfg.BasketSize)
	assert.Equal(t, "detector events", cfg.Title)
	assert.False(t, cfg.ValidateSchemas)
	assert.True(t, cfg.Progress, "unset keys keep their defaults")

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoad_EnvFallback(t *testing.T) {
	path := writeConfig(t, "batch_size: 42\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.BatchSize)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "batch_size: [1, 2"},
		{"zero batch size", "batch_size: 0"},
		{"bad compression", "compression: snappy"},
		{"bad level", "compression_level: 12"},
		{"bad format", "format: xml"},
		{"bad log level", "log_level: loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
