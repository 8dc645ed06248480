// Package config loads optional VM tunables from an ember.toml file,
// following the toml.DecodeFile pattern used for project manifests
// elsewhere in the ecosystem. Absence of a config file is not an
// error: every field defaults to the values the VM ships with.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default resource limits, matching the VM's own built-in defaults.
const (
	DefaultMaxStackSlots = 16384
	DefaultMaxCallFrames = 64
)

// VM holds the tunable resource limits an ember.toml file may override.
type VM struct {
	MaxStackSlots int `toml:"max_stack_slots"`
	MaxCallFrames int `toml:"max_call_frames"`
}

// Config is the root of ember.toml.
type Config struct {
	VM VM `toml:"vm"`
}

// Default returns a Config populated with the VM's built-in defaults.
func Default() Config {
	return Config{VM: VM{
		MaxStackSlots: DefaultMaxStackSlots,
		MaxCallFrames: DefaultMaxCallFrames,
	}}
}

// Find walks upward from startDir looking for ember.toml, the way a
// project manifest search walks up to find its own root file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "ember.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and decodes path, filling unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.VM.MaxStackSlots <= 0 {
		cfg.VM.MaxStackSlots = DefaultMaxStackSlots
	}
	if cfg.VM.MaxCallFrames <= 0 {
		cfg.VM.MaxCallFrames = DefaultMaxCallFrames
	}
	return cfg, nil
}

// LoadFromDir looks for ember.toml starting at dir and loads it if
// found, otherwise returns the default configuration.
func LoadFromDir(dir string) (Config, error) {
	path, found, err := Find(dir)
	if err != nil {
		return Config{}, err
	}
	if !found {
		return Default(), nil
	}
	return Load(path)
}
