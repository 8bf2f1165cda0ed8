package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/prelaunch/internal/messages"
)

// ErrConfigValidation wraps config validation failures (as opposed to TOML
// syntax or filesystem errors) so callers can classify them with errors.Is.
var ErrConfigValidation = errors.New("config validation failed")

// Load reads the config file at path, overlays it on the built-in defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigReadFileFmt, path, err)
	}
	return Parse(data, path)
}

// LoadOrDefault behaves like Load but returns the validated defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(messages.ConfigReadFileFmt, path, err)
		}
	}
	cfg := Default()
	if err := cfg.finalize("defaults"); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes TOML data, fills unset fields from Default, expands "~" in
// path fields, and validates. source is used in error messages.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigInvalidTOMLFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return nil, fmt.Errorf("%w: "+messages.ConfigUnrecognizedKeysFmt, ErrConfigValidation, source, err)
	}
	cfg.applyDefaults(Default())
	if err := cfg.finalize(source); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeStrict re-decodes with unknown-field rejection so typos in keys are
// reported instead of silently ignored.
func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}

func (c *Config) finalize(source string) error {
	if err := c.expandHome(); err != nil {
		return fmt.Errorf(messages.ConfigExpandHomeFmt, source, err)
	}
	if err := c.Validate(source); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return nil
}

// expandHome resolves a leading "~" in every path-valued field.
func (c *Config) expandHome() error {
	fields := []*string{
		&c.Runtime.InstallDir,
		&c.Paths.StateDir,
		&c.Paths.CacheDir,
		&c.Paths.StagingDir,
	}
	for _, f := range fields {
		expanded, err := homedir.Expand(*f)
		if err != nil {
			return err
		}
		*f = expanded
	}
	dirs := make([]string, len(c.Runtime.SearchDirs))
	for i, dir := range c.Runtime.SearchDirs {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return err
		}
		dirs[i] = expanded
	}
	c.Runtime.SearchDirs = dirs
	return nil
}
