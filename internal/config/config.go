package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lifeplan/internal/scheduler"
)

// CalendarConfig is one subscribed ICS calendar.
type CalendarConfig struct {
	// ID identifies the calendar in events and API filters.
	ID string `yaml:"id" json:"id"`
	// Name is a display label.
	Name string `yaml:"name" json:"name"`
	// URL is an http(s) feed, a file:// URL or a local path.
	URL string `yaml:"url" json:"url"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address of the API server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone dates and HH:MM preferences are read in.
	// "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DataDir holds the record store and the ICS cache.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Store selects the record backend: "file" or "sqlite".
	Store string `yaml:"store" json:"store"`

	// PreferencesPath is the preferences JSON file. Defaults to
	// <data_dir>/preferences.json.
	PreferencesPath string `yaml:"preferences_path" json:"preferences_path"`

	// RefreshCron reloads calendars (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// RolloverCron creates the day's checklist (carry-over) shortly after
	// midnight.
	RolloverCron string `yaml:"rollover" json:"rollover"`

	// HorizonDays is how many days /api/events returns by default.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	Calendars []CalendarConfig `yaml:"calendars" json:"calendars"`

	// Habits is the ordered list of tracked habit names.
	Habits []string `yaml:"habits" json:"habits"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultRefresh  = "*/15 * * * *"
	defaultRollover = "5 0 * * *"
	defaultHorizon  = 7
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       defaultListen,
		Timezone:     "Local",
		DataDir:      "./var/lifeplan",
		Store:        "file",
		RefreshCron:  defaultRefresh,
		RolloverCron: defaultRollover,
		HorizonDays:  defaultHorizon,
		Calendars:    []CalendarConfig{},
		Habits:       []string{},
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Normalize fills zero values with defaults so partially written files
// still work.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store == "" {
		c.Store = d.Store
	}
	if c.PreferencesPath == "" {
		c.PreferencesPath = filepath.Join(c.DataDir, "preferences.json")
	}
	if c.RefreshCron == "" {
		c.RefreshCron = d.RefreshCron
	}
	if c.RolloverCron == "" {
		c.RolloverCron = d.RolloverCron
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
	if c.Calendars == nil {
		c.Calendars = []CalendarConfig{}
	}
	for i := range c.Calendars {
		if c.Calendars[i].ID == "" {
			c.Calendars[i].ID = fmt.Sprintf("cal%d", i+1)
		}
	}
	if c.Habits == nil {
		c.Habits = []string{}
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	switch c.Store {
	case "file", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store: unknown backend %q", c.Store))
	}
	if err := scheduler.ValidateSpec(c.RefreshCron); err != nil {
		errs = append(errs, fmt.Errorf("refresh: %w", err))
	}
	if err := scheduler.ValidateSpec(c.RolloverCron); err != nil {
		errs = append(errs, fmt.Errorf("rollover: %w", err))
	}
	seen := make(map[string]bool, len(c.Calendars))
	for _, cal := range c.Calendars {
		if cal.URL == "" {
			errs = append(errs, fmt.Errorf("calendar %s: url is empty", cal.ID))
		}
		if seen[cal.ID] {
			errs = append(errs, fmt.Errorf("calendar %s: duplicate id", cal.ID))
		}
		seen[cal.ID] = true
	}
	return errors.Join(errs...)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load reads the YAML config at path. On first run (no file) the defaults
// are written with 0600 permissions and returned.
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
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save normalizes cfg and writes it to path atomically (temp file, fsync,
// chmod 0600, rename).
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

	tmp, err := os.CreateTemp(dir, ".lifeplan-config-*.tmp")
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

func (c *Config) Save(path string) error {
	return Save(path, c)
}
