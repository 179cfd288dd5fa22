// Package config loads settings from defaults, a config file and the
// environment. Command-line flags are applied last by the caller.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user config and data directories.
const AppName = "tada"

// Config holds every tunable. Zero values never reach the program: Default
// fills them and files only override what they mention.
type Config struct {
	// DataDir is the application-private directory holding the todo file.
	DataDir string `toml:"data_dir" yaml:"data_dir"`
	// DataFile is the todo file name inside DataDir.
	DataFile string `toml:"data_file" yaml:"data_file"`
	// AtomicWrites writes a temp file and renames it over the old one.
	AtomicWrites bool `toml:"atomic_writes" yaml:"atomic_writes"`

	Theme  string `toml:"theme" yaml:"theme"`
	Filter string `toml:"filter" yaml:"filter"` // initial view filter

	LogLevel string `toml:"log_level" yaml:"log_level"`
	// LogFile is relative to DataDir unless absolute.
	LogFile string `toml:"log_file" yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataDir:      defaultDataDir(),
		DataFile:     "todos.json",
		AtomicWrites: true,
		Theme:        "classic",
		Filter:       "all",
		LogLevel:     "info",
		LogFile:      "todo.log",
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}

// Load builds a Config from defaults, the file at path (or the first default
// location that exists when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = Find(filepath.Dir(cfg.DataDir))
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// Find returns the first of <dir>/tada/config.toml, config.yaml, config.yml
// that exists, or "".
func Find(dir string) string {
	if dir == "" || dir == "." {
		return ""
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, AppName, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	return nil
}

// ApplyEnv overrides settings from TODO_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("TODO_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("TODO_THEME"); v != "" {
		c.Theme = v
	}
	if v := getenv("TODO_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// DataPath is the todo file location.
func (c *Config) DataPath() string { return filepath.Join(c.DataDir, c.DataFile) }

// LogPath is the log file location, or "" when file logging is off.
func (c *Config) LogPath() string {
	if c.LogFile == "" || c.LogFile == "-" {
		return ""
	}
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, c.LogFile)
}
