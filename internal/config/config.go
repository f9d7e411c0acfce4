package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mangaview/internal/errors"

	"gopkg.in/yaml.v3"
)

// Thumbnail modes
const (
	ThumbnailModeBitmap    = "bitmap"
	ThumbnailModeReference = "reference"
)

// Config represents the application configuration structure.
// It defines the viewer, thumbnail strip, archive filter and logging settings.
type Config struct {
	Viewer struct {
		CacheArchive      bool          `yaml:"cache_archive"`      // Keep the decoded archive between page loads
		Workers           int           `yaml:"workers"`            // Concurrent page decodes
		ThumbnailDebounce time.Duration `yaml:"thumbnail_debounce"` // Delay before the thumbnail strip refreshes
	} `yaml:"viewer"`
	Thumbnails struct {
		Enabled bool   `yaml:"enabled"` // Show the thumbnail strip
		Before  int    `yaml:"before"`  // Pages shown before the current one
		After   int    `yaml:"after"`   // Pages shown after the current one
		Size    int    `yaml:"size"`    // Longest thumbnail edge in pixels
		Mode    string `yaml:"mode"`    // bitmap or reference
	} `yaml:"thumbnails"`
	Archive struct {
		Extensions []string `yaml:"extensions"` // Image extensions, without the dot
	} `yaml:"archive"`
	Watch struct {
		Enabled bool `yaml:"enabled"` // Reload the archive when it changes on disk
	} `yaml:"watch"`
	Log struct {
		Level string `yaml:"level"` // debug, info, warn or error
		JSON  bool   `yaml:"json"`  // One JSON object per line
	} `yaml:"log"`
	Theme struct {
		Name    string `yaml:"name"`    // Theme name (default, dark, light)
		Primary string `yaml:"primary"` // Primary color for branding
		Current string `yaml:"current"` // Current page highlight
		Error   string `yaml:"error"`   // Error message color
		Muted   string `yaml:"muted"`   // Secondary text
		Border  string `yaml:"border"`  // Border color for frames
	} `yaml:"theme"`
}

// DefaultPath returns ~/.config/mangaview/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewConfigError("cannot locate config directory", "", errors.ConfigNotFound, err)
	}
	return filepath.Join(home, ".config", "mangaview", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/mangaview/config.yaml).
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "error reading config file %s", path)
	}

	// Unmarshal over the defaults so unset fields keep their values
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Viewer.CacheArchive = true
	cfg.Viewer.Workers = 4
	cfg.Viewer.ThumbnailDebounce = 100 * time.Millisecond

	cfg.Thumbnails.Enabled = true
	cfg.Thumbnails.Before = 3
	cfg.Thumbnails.After = 5
	cfg.Thumbnails.Size = 96
	cfg.Thumbnails.Mode = ThumbnailModeBitmap

	cfg.Archive.Extensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

	cfg.Watch.Enabled = false

	cfg.Log.Level = "info"

	cfg.ApplyTheme("default")

	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns a *errors.ConfigError naming the offending parameter.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if c.Viewer.Workers < 1 {
		return invalid("viewer.workers", "must be >= 1")
	}
	if c.Viewer.ThumbnailDebounce < 0 {
		return invalid("viewer.thumbnail_debounce", "must be >= 0")
	}

	if c.Thumbnails.Before < 0 {
		return invalid("thumbnails.before", "must be >= 0")
	}
	if c.Thumbnails.After < 0 {
		return invalid("thumbnails.after", "must be >= 0")
	}
	if c.Thumbnails.Size < 16 {
		return invalid("thumbnails.size", "must be >= 16")
	}
	validModes := map[string]bool{ThumbnailModeBitmap: true, ThumbnailModeReference: true}
	if !validModes[c.Thumbnails.Mode] {
		return invalid("thumbnails.mode", fmt.Sprintf("unknown mode %q", c.Thumbnails.Mode))
	}

	if len(c.Archive.Extensions) == 0 {
		return invalid("archive.extensions", "at least one extension is required")
	}
	for i, ext := range c.Archive.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			return invalid("archive.extensions", fmt.Sprintf("extension %d is empty", i))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return invalid("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}

	return nil
}

func invalid(param, reason string) error {
	return errors.NewConfigError(reason, param, errors.InvalidConfig, nil)
}

// NewTestConfig creates a configuration instance for testing purposes.
// Thumbnails refresh without delay and decoding runs on two workers.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Viewer.Workers = 2
	cfg.Viewer.ThumbnailDebounce = 0
	cfg.Thumbnails.Size = 16
	return cfg
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary": "213", // Purple
			"current": "114", // Green
			"error":   "196", // Red
			"muted":   "245", // Grey
			"border":  "213", // Purple
		},
		"dark": {
			"primary": "105", // Dark Blue
			"current": "78",  // Dark Green
			"error":   "160", // Dark Red
			"muted":   "240", // Dark Grey
			"border":  "105", // Dark Blue
		},
		"light": {
			"primary": "135", // Light Purple
			"current": "150", // Light Green
			"error":   "210", // Light Red
			"muted":   "250", // Light Grey
			"border":  "135", // Light Purple
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ApplyTheme sets the theme in the configuration.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Current = theme["current"]
	c.Theme.Error = theme["error"]
	c.Theme.Muted = theme["muted"]
	c.Theme.Border = theme["border"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light"}
}
