// Package config loads commitstack configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config parameterizes planning and rendering. It is passed explicitly to
// the components that need it; nothing in the core reads ambient state.
type Config struct {
	Provider   string      `toml:"provider"`
	Model      string      `toml:"model"`
	MaxCommits int         `toml:"max_commits"`
	Style      StyleConfig `toml:"style"`
}

// StyleConfig holds the rendering options persisted in the config file.
type StyleConfig struct {
	Profile         string `toml:"profile"`
	IncludeBody     bool   `toml:"include_body"`
	MaxBullets      int    `toml:"max_bullets"`
	WrapWidth       int    `toml:"wrap_width"`
	TicketPlacement string `toml:"ticket_placement"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Provider:   "gemini",
		Model:      "gemini-3-flash-preview",
		MaxCommits: 6,
		Style: StyleConfig{
			Profile:         "default",
			IncludeBody:     true,
			MaxBullets:      6,
			WrapWidth:       72,
			TicketPlacement: "prefix",
		},
	}
}

// DefaultPath returns the config file path under XDG conventions.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "commitstack", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "commitstack", "config.toml")
	}
	return filepath.Join(home, ".config", "commitstack", "config.toml")
}

// Load reads the config at path, merging over defaults. A missing file is
// not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
