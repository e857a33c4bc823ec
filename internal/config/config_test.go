package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "rem" {
		t.Fatalf("format = %q, want rem", cfg.Format)
	}
	if cfg.Timeout().Seconds() != 10 {
		t.Fatalf("timeout = %v, want 10s", cfg.Timeout())
	}
	if cfg.Metrics.Width != 800 || cfg.Metrics.Height != 480 {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("interpreter: dfrotz -m\ntimeout_secs: 5\nformat: cheap\n")
	if err := os.WriteFile(filepath.Join(dir, ".ifregtest.yaml"), content, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interpreter != "dfrotz -m" || cfg.Format != "cheap" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Timeout().Seconds() != 5 {
		t.Fatalf("timeout = %v, want 5s", cfg.Timeout())
	}
}

func TestHistoryPathRelative(t *testing.T) {
	cfg := &Config{History: HistoryConfig{Path: ".ifregtest/history.db"}}
	got := cfg.HistoryPath("/work")
	want := filepath.Join("/work", ".ifregtest/history.db")
	if got != want {
		t.Fatalf("HistoryPath = %q, want %q", got, want)
	}
}
