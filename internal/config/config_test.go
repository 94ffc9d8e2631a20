package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "UTC" || cfg.DefaultView != "month" {
		t.Errorf("defaults = %q/%q; want UTC/month", cfg.Timezone, cfg.DefaultView)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perms = %o; want 600", perm)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &Config{
		Timezone:    "Europe/Warsaw",
		DefaultView: "week",
		Sources: []SourceConfig{
			{ID: "work", Name: "Work", URL: "https://example.com/work.ics", Color: "#464AFF", Editable: true},
			{URL: "https://example.com/shared.ics"},
		},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Timezone != "Europe/Warsaw" || got.DefaultView != "week" {
		t.Errorf("loaded = %q/%q; want Europe/Warsaw/week", got.Timezone, got.DefaultView)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("len(Sources) = %d; want 2", len(got.Sources))
	}
	if got.Sources[0].Color != "#464AFF" {
		t.Errorf("configured color was rewritten to %q", got.Sources[0].Color)
	}
}

func TestNormalizeFillsSources(t *testing.T) {
	cfg := &Config{
		DefaultView: "year",
		Sources: []SourceConfig{
			{URL: "a.ics"},
			{URL: "b.ics", Color: "blue"},
		},
	}
	cfg.Normalize()

	if cfg.DefaultView != "month" {
		t.Errorf("DefaultView = %q; want month", cfg.DefaultView)
	}
	if cfg.Sources[0].ID != "cal-1" || cfg.Sources[1].ID != "cal-2" {
		t.Errorf("source IDs = %q, %q; want cal-1, cal-2", cfg.Sources[0].ID, cfg.Sources[1].ID)
	}
	if cfg.Sources[0].Color != Palette[0] || cfg.Sources[1].Color != Palette[1] {
		t.Errorf("palette colors not applied: %q, %q", cfg.Sources[0].Color, cfg.Sources[1].Color)
	}
	if cfg.Sources[0].Name != "cal-1" {
		t.Errorf("Name = %q; want id fallback", cfg.Sources[0].Name)
	}
}
