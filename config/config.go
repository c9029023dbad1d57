package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriterConfig holds the defaults applied to files the tools write
type WriterConfig struct {
	Format        uint16 `json:"format"`
	TimeBase      uint16 `json:"timeBase"`
	RunningStatus bool   `json:"runningStatus"`
}

// TextConfig controls how text meta events are decoded for display
type TextConfig struct {
	Charset string `json:"charset,omitempty"` // e.g. "shift_jis"; empty = raw bytes
}

// DebugConfig enables the debug log
type DebugConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	LogPath string `json:"logPath,omitempty"` // empty = ~/.config/go-smf/debug.log
}

// UIConfig stores viewer preferences
type UIConfig struct {
	Palette  string `json:"palette,omitempty"` // GIMP .gpl file; empty = built-in
	PageSize int    `json:"pageSize,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Writer WriterConfig `json:"writer"`
	Text   TextConfig   `json:"text,omitempty"`
	Debug  DebugConfig  `json:"debug,omitempty"`
	UI     UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Writer: WriterConfig{
			Format:   1,
			TimeBase: 480,
		},
		UI: UIConfig{
			PageSize: 20,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-smf"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Missing fields keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fill()
	return cfg, nil
}

// fill replaces zero values that would produce unusable files or views
func (c *Config) fill() {
	def := DefaultConfig()
	if c.Writer.TimeBase == 0 {
		c.Writer.TimeBase = def.Writer.TimeBase
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = def.UI.PageSize
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
