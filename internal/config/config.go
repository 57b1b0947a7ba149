// ABOUTME: Loads the optional .hunksplit.toml file from the repository root
// ABOUTME: Supplies defaults for messages, line endings, debug and excluded paths

// Package config reads hunksplit's per-repository configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/obra/hunksplit/internal/hunk"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up at the repository root.
const FileName = ".hunksplit.toml"

// Config is the contents of .hunksplit.toml.
type Config struct {
	Debug           bool     `toml:"debug"`
	LineEndings     string   `toml:"line_endings"`
	RemainderPrefix string   `toml:"remainder_prefix"`
	SelectedPrefix  string   `toml:"selected_prefix"`
	Exclude         []string `toml:"exclude"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Debug:           false,
		LineEndings:     "preserve",
		RemainderPrefix: "remainder of ",
		SelectedPrefix:  "split: ",
		Exclude:         []string{},
	}
}

// ReadConfig reads FileName from dir. A missing file yields Default().
func ReadConfig(dir string) (*Config, error) {
	fileName := filepath.Join(dir, FileName)
	if _, err := os.Stat(fileName); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	file, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}

	config := Default()
	if err := toml.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", fileName, err)
	}
	return config, nil
}

// Validate checks the line ending mode and exclude patterns.
func (c *Config) Validate() error {
	if _, err := hunk.ParseEOLMode(c.LineEndings); err != nil {
		return err
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("bad exclude pattern %q", pattern)
		}
	}
	return nil
}

// EOLMode returns the configured line ending mode.
func (c *Config) EOLMode() hunk.EOLMode {
	mode, err := hunk.ParseEOLMode(c.LineEndings)
	if err != nil {
		return hunk.PreserveEOL
	}
	return mode
}

// Excluded reports whether path matches one of the exclude patterns.
func (c *Config) Excluded(path string) bool {
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
