package config

import (
	"path/filepath"
	"strings"
)

// Paths are the resolved locations of every file rnm reads or writes.
type Paths struct {
	Config   string
	State    string
	Journal  string
	Lock     string
	Presets  string
	Audit    string
	LastPlan string
}

// ResolvePaths resolves file locations from cfg. Relative values are taken
// relative to the directory holding the config file.
func ResolvePaths(configPath string, cfg *Config) Paths {
	configPath = ResolveConfigPath(configPath)
	dir := filepath.Dir(configPath)
	if cfg == nil {
		cfg = &Config{}
	}

	journal := resolve(dir, cfg.JournalFile, "journal.db")
	return Paths{
		Config:   configPath,
		State:    resolve(dir, cfg.StateFile, "state.json"),
		Journal:  journal,
		Lock:     journal + ".lock",
		Presets:  resolve(dir, cfg.PresetsDir, "presets"),
		Audit:    resolve(dir, cfg.AuditFile, "audit.log"),
		LastPlan: filepath.Join(dir, "last-plan.json"),
	}
}

func resolve(dir, value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return filepath.Join(dir, fallback)
	}
	if isAbsolutePath(value) {
		return filepath.Clean(filepath.FromSlash(value))
	}
	return filepath.Join(dir, filepath.FromSlash(value))
}

func isAbsolutePath(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	// Treat slash-rooted config values as absolute on every OS.
	return strings.HasPrefix(filepath.ToSlash(p), "/")
}
