package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != defaultListen || cfg.RolloverCron != defaultRollover {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}
}

func TestLoadNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
timezone: UTC
data_dir: /srv/lifeplan
store: SQLite
calendars:
  - url: https://example.com/work.ics
  - id: home
    url: /srv/home.ics
habits: [meditate, read]
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store != "sqlite" {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.PreferencesPath != filepath.Join("/srv/lifeplan", "preferences.json") {
		t.Errorf("PreferencesPath = %q", cfg.PreferencesPath)
	}
	if cfg.Calendars[0].ID != "cal1" || cfg.Calendars[1].ID != "home" {
		t.Errorf("calendar ids = %q, %q", cfg.Calendars[0].ID, cfg.Calendars[1].ID)
	}
	if len(cfg.Habits) != 2 || cfg.HorizonDays != defaultHorizon {
		t.Errorf("cfg = %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"bad cron", "refresh: every quarter hour\n"},
		{"bad store", "store: postgres\n"},
		{"calendar without url", "calendars:\n  - id: x\n"},
		{"duplicate calendar", "calendars:\n  - {id: a, url: a.ics}\n  - {id: a, url: b.ics}\n"},
		{"not yaml", "listen: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load() accepted %q", tt.doc)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Habits = []string{"walk"}
	cfg.BasicAuth = &BasicAuthConfig{Username: "me", Password: "pw"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Habits) != 1 || got.BasicAuth == nil || got.BasicAuth.Username != "me" {
		t.Errorf("round trip = %+v", got)
	}
}
