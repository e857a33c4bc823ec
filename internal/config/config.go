// Package config loads the run-level defaults for ifregtest: interpreter,
// timeout, display metrics, and environment overrides, layered the way
// viper layers any CLI tool's rc file under command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of run defaults read from .ifregtest.yaml (or
// .ifregtest.json). Every field may be overridden per-invocation by CLI
// flags; nothing here is required.
type Config struct {
	Interpreter string   `mapstructure:"interpreter"`
	InterpArgs  []string `mapstructure:"interpreter_args"`
	Format      string   `mapstructure:"format"` // "rem", "remsingle", "cheap"
	TimeoutSecs int      `mapstructure:"timeout_secs"`
	Env         []string `mapstructure:"env"` // "KEY=VALUE" pairs merged onto os.Environ()

	Metrics MetricsConfig `mapstructure:"metrics"`
	History HistoryConfig `mapstructure:"history"`
}

// MetricsConfig overrides the default window-size handshake metrics.
type MetricsConfig struct {
	Width           int `mapstructure:"width"`
	Height          int `mapstructure:"height"`
	GridCharWidth   int `mapstructure:"grid_char_width"`
	GridCharHeight  int `mapstructure:"grid_char_height"`
	BufferCharWidth int `mapstructure:"buffer_char_width"`
	BufferCharHeight int `mapstructure:"buffer_char_height"`
}

// HistoryConfig controls the run-history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Timeout returns the configured read deadline, falling back to a sane
// default when unset or non-positive.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

func defaults() map[string]any {
	return map[string]any{
		"format":                     "rem",
		"timeout_secs":               10,
		"metrics.width":              800,
		"metrics.height":             480,
		"metrics.grid_char_width":    10,
		"metrics.grid_char_height":   12,
		"metrics.buffer_char_width":  10,
		"metrics.buffer_char_height": 12,
		"history.enabled":            false,
		"history.path":               ".ifregtest/history.db",
	}
}

// Load reads .ifregtest.{yaml,json} from the given directory (falling back
// to the current directory) layered over built-in defaults. A missing file
// is not an error: every field keeps its default.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".ifregtest")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, isNotExist := err.(*os.PathError); !isNotExist {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// HistoryPath resolves the configured history database path relative to
// dir, creating no directories itself.
func (c *Config) HistoryPath(dir string) string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(dir, c.History.Path)
}
