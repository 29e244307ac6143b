// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Settings are the ambient knobs of one invocation.
// They come from an optional YAML file, overridden by the environment.
type Settings struct {
	Display string      `yaml:"display" env:"WAYLAND_DISPLAY"`
	Log     LogSettings `yaml:"log"`

	// Socket is an inherited, connected compositor fd (WAYLAND_SOCKET).
	Socket     string `yaml:"-" env:"WAYLAND_SOCKET"`
	RuntimeDir string `yaml:"-" env:"XDG_RUNTIME_DIR"`
}

// ---- LOGGING ----

type LogSettings struct {
	Level  string `yaml:"level" env:"RIVER_SHIFTTAGS_LOG_LEVEL"`
	Format string `yaml:"format" env:"RIVER_SHIFTTAGS_LOG_FORMAT"`
}

// ---- FILE LOCATION ----

type locations struct {
	Explicit   string `env:"RIVER_SHIFTTAGS_CONFIG"`
	ConfigHome string `env:"XDG_CONFIG_HOME"`
	Home       string `env:"HOME"`
}

// Defaults keep a normal run silent apart from the printed mask.
func Defaults() Settings {
	return Settings{
		Log: LogSettings{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load builds settings from defaults, the settings file (if any) and the
// environment, in that order. A missing settings file is not an error
// unless it was named explicitly.
func Load() (*Settings, error) {
	var loc locations
	if err := env.Parse(&loc); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	s := Defaults()

	path := loc.path()
	if path != "" {
		if err := loadFile(path, &s); err != nil {
			if loc.Explicit != "" || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	Normalize(&s)
	return &s, nil
}

func (l locations) path() string {
	switch {
	case l.Explicit != "":
		return l.Explicit
	case l.ConfigHome != "":
		return filepath.Join(l.ConfigHome, "river-shifttags", "config.yaml")
	case l.Home != "":
		return filepath.Join(l.Home, ".config", "river-shifttags", "config.yaml")
	}
	return ""
}

func loadFile(path string, s *Settings) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("settings file: %w", err)
	}
	if err := yaml.Unmarshal(b, s); err != nil {
		return fmt.Errorf("settings file %s: %w", path, err)
	}
	return nil
}
