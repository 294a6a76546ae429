// Package config loads the server configuration from a YAML file, with
// sensible defaults when no file is given.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds process-wide settings for the HTTP surface.
type Config struct {
	Listen             string `yaml:"listen"`
	UploadDir          string `yaml:"upload_dir"`
	MaxUploadBytes     int64  `yaml:"max_upload_bytes"`
	NearDuplicateIndex bool   `yaml:"near_duplicate_index"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:             ":5050",
		UploadDir:          filepath.Join(os.TempDir(), "screencheck_uploads"),
		MaxUploadBytes:     20 * 1024 * 1024,
		NearDuplicateIndex: true,
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults; the PORT environment variable, when set,
// overrides the listen address either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Listen = ":" + port
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max_upload_bytes must be positive")
	}
	return cfg, nil
}
