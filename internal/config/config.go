// Package config loads cdmcheck settings from an optional YAML file.
//
// Command-line flags override file values; the CLI applies that precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cdmledger/internal/record"
)

// Config holds validation settings.
type Config struct {
	ModelVersion string `yaml:"model_version"`
	Strict       bool   `yaml:"strict"`
	CollectAll   bool   `yaml:"collect_all"`
	Workers      int    `yaml:"workers"`
	Schema       string `yaml:"schema,omitempty"` // Path to a CUE schema file
}

// Default returns the built-in settings.
func Default() Config {
	return Config{ModelVersion: record.SupportedModelVersion}
}

// Load reads a YAML config file on top of Default. Unknown keys are rejected.
// A relative schema path is resolved against the config file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Schema != "" && !filepath.IsAbs(cfg.Schema) {
		cfg.Schema = filepath.Join(filepath.Dir(path), cfg.Schema)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings are usable.
func (c Config) Validate() error {
	if c.ModelVersion == "" {
		return errors.New("model_version must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}
