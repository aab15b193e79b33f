package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Loaded is the result of resolving, reading, and layering configuration.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load reads configuration from the resolved path, falling back to defaults
// when no file exists, then layers environment overrides on top. A relative
// vocabulary path is resolved against the config file's directory.
func Load(explicit string) (Loaded, error) {
	path, err := ResolvePath(explicit)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: path}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		loaded.Exists = true
	case errors.Is(err, fs.ErrNotExist):
		if explicit != "" {
			return Loaded{}, fmt.Errorf("config file %s: %w", path, err)
		}
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("no config file at %s, using defaults", path),
		})
	default:
		return Loaded{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	// Parse validates the file-overlaid config; its warnings are recomputed
	// below against the final config once env overrides are applied.
	cfg, _, err := Parse(string(content), Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg, err = ApplyEnv(cfg)
	if err != nil {
		return Loaded{}, err
	}
	warnings, err := Validate(cfg)
	if err != nil {
		return Loaded{}, fmt.Errorf("invalid config after environment overrides: %w", err)
	}
	loaded.Warnings = append(loaded.Warnings, warnings...)

	if !filepath.IsAbs(cfg.Vocabulary.Path) {
		cfg.Vocabulary.Path = filepath.Join(filepath.Dir(path), cfg.Vocabulary.Path)
	}

	loaded.Config = cfg
	return loaded, nil
}
