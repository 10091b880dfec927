package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Drill.Scale != nil || cfg.MIDI.In != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[drill]
scale = "C4,E4,G4"
window = 12
dampening = 0.5
show-note = false
note-duration = "750ms"

[midi]
in = "Launchkey"
channel = 2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Drill.Scale == nil || *cfg.Drill.Scale != "C4,E4,G4" {
		t.Fatalf("unexpected scale: %v", cfg.Drill.Scale)
	}
	if cfg.Drill.Window == nil || *cfg.Drill.Window != 12 {
		t.Fatalf("unexpected window: %v", cfg.Drill.Window)
	}
	if cfg.Drill.Dampening == nil || *cfg.Drill.Dampening != 0.5 {
		t.Fatalf("unexpected dampening: %v", cfg.Drill.Dampening)
	}
	if cfg.Drill.ShowNote == nil || *cfg.Drill.ShowNote {
		t.Fatalf("unexpected show-note: %v", cfg.Drill.ShowNote)
	}
	if cfg.Drill.ReportEvery != nil {
		t.Fatalf("report-every should be unset")
	}
	if cfg.MIDI.In == nil || *cfg.MIDI.In != "Launchkey" {
		t.Fatalf("unexpected midi in: %v", cfg.MIDI.In)
	}
	if cfg.MIDI.Channel == nil || *cfg.MIDI.Channel != 2 {
		t.Fatalf("unexpected channel: %v", cfg.MIDI.Channel)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[drill]\nwords = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "drill.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsHonourXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "notedrill", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "notedrill", "notedrill.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "notedrill", "notedrill.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}
