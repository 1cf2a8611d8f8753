package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
listen: "0.0.0.0:9090"
timezone: "UTC"
refresh: "0 * * * *"
cache_dir: "/tmp/classfree-test"
source:
  url: "https://example.edu/timetable.csv"
  id: "goa-2026"
preview_room: "LT4"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Listen != "0.0.0.0:9090" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, "0.0.0.0:9090")
	}
	if cfg.Source.URL != "https://example.edu/timetable.csv" {
		t.Errorf("Source.URL = %q", cfg.Source.URL)
	}
	if cfg.PreviewRoom != "LT4" {
		t.Errorf("PreviewRoom = %q, want %q", cfg.PreviewRoom, "LT4")
	}
	// Unset fields are normalized to defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad_MissingFileCreatesDefault(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q, want default", cfg.Listen)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file perm = %o, want 0600", perm)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("listen: [nope"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestNormalize_SourceID(t *testing.T) {
	cfg := &Config{Source: SourceConfig{URL: "https://example.edu/t.csv"}}
	cfg.Normalize()
	if cfg.Source.ID != "timetable" {
		t.Errorf("Source.ID = %q, want %q", cfg.Source.ID, "timetable")
	}
}
