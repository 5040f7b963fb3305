package config

import (
	"path/filepath"
	"testing"
)

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	disabled := false
	cfg := &Config{
		PresetsDir:  "  my-presets ",
		Audit:       &disabled,
		LockTimeout: "2s",
		UI:          UIConfig{Accent: "#00ff88"},
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if loaded.AuditEnabled() {
		t.Fatal("expected audit=false to persist")
	}
	if !loaded.Remember() {
		t.Fatal("unset remember_settings should stay default")
	}
	if loaded.PresetsDir != "my-presets" {
		t.Fatalf("presets_dir = %q", loaded.PresetsDir)
	}
	if loaded.UI.Accent != "#00ff88" {
		t.Fatalf("accent = %q", loaded.UI.Accent)
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo(" ", &Config{}); err == nil {
		t.Fatal("expected error")
	}
}
