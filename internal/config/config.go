package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Palette is the default calendar color rotation, applied to sources
// that do not configure a color of their own.
var Palette = []string{
	"#E81AD4",
	"#8F00FF",
	"#6214CC",
	"#464AFF",
}

var colorPattern = regexp.MustCompile(`^#[A-Fa-f0-9]{6}$`)

// SourceConfig describes a single ICS calendar source. Each source is
// one calendar on the timeline: its events carry the source's ID, color
// and edit access.
type SourceConfig struct {
	// ID identifies the calendar internally and doubles as the display
	// class of its events.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// URL is the ICS endpoint. file:// URLs and bare paths are read from
	// disk instead of over HTTP.
	URL string `yaml:"url" json:"url"`
	// Color is a "#RRGGBB" value; empty or malformed colors are replaced
	// from the default palette.
	Color string `yaml:"color" json:"color"`
	// Editable marks calendars the viewer owns or may modify. Events of
	// non-editable calendars render with the shared fallback styling.
	Editable bool `yaml:"editable" json:"editable"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone all grids and timelines are rendered in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DefaultView is used when no view kind is given: "day", "week" or
	// "month".
	DefaultView string `yaml:"default_view" json:"default_view"`

	// RefreshCron is the cron schedule for watch mode (e.g. "*/30 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the per-source fetch cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Sources is the list of subscribed calendars.
	Sources []SourceConfig `yaml:"sources" json:"sources"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:    "UTC",
		DefaultView: "month",
		RefreshCron: "*/30 * * * *",
		CacheDir:    "./var/ics-cache",
		LogLevel:    "info",
		Sources:     []SourceConfig{},
	}
}

// Normalize fills in missing or invalid values so that partially-filled
// configs still behave. Sources without a usable color get one from the
// palette in rotation, and sources without an ID are numbered.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	switch c.DefaultView {
	case "day", "week", "month":
	default:
		c.DefaultView = "month"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/ics-cache"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	for i := range c.Sources {
		if c.Sources[i].ID == "" {
			c.Sources[i].ID = fmt.Sprintf("cal-%d", i+1)
		}
		if !colorPattern.MatchString(c.Sources[i].Color) {
			c.Sources[i].Color = Palette[i%len(Palette)]
		}
		if c.Sources[i].Name == "" {
			c.Sources[i].Name = c.Sources[i].ID
		}
	}
}

// Load reads configuration from the given YAML path. A missing file is
// not an error: the defaults are written there first (0600) and then
// returned, so a first run leaves a file the user can edit.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calview-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
