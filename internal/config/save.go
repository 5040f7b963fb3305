package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/atomicfile"
)

type persistedConfig struct {
	StateFile        *string              `toml:"state_file,omitempty"`
	JournalFile      *string              `toml:"journal_file,omitempty"`
	PresetsDir       *string              `toml:"presets_dir,omitempty"`
	Audit            *bool                `toml:"audit,omitempty"`
	AuditFile        *string              `toml:"audit_file,omitempty"`
	RememberSettings *bool                `toml:"remember_settings,omitempty"`
	DefaultScope     *string              `toml:"default_scope,omitempty"`
	LockTimeout      *string              `toml:"lock_timeout,omitempty"`
	UI               *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent *string `toml:"accent,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		StateFile:        nonEmptyPtr(cfg.StateFile),
		JournalFile:      nonEmptyPtr(cfg.JournalFile),
		PresetsDir:       nonEmptyPtr(cfg.PresetsDir),
		Audit:            cfg.Audit,
		AuditFile:        nonEmptyPtr(cfg.AuditFile),
		RememberSettings: cfg.RememberSettings,
		DefaultScope:     nonEmptyPtr(cfg.DefaultScope),
		LockTimeout:      nonEmptyPtr(cfg.LockTimeout),
	}
	if accent := nonEmptyPtr(cfg.UI.Accent); accent != nil {
		out.UI = &persistedUISettings{Accent: accent}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomicfile.WriteFile(afero.NewOsFs(), path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
