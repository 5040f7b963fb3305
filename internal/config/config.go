// Package config handles global rnm configuration and session state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by configuration validation errors.
var ErrInvalid = errors.New("invalid config")

// Defaults for values left unset in config.toml.
const (
	DefaultLockTimeout = 5 * time.Second
	DefaultScope       = "file"
)

// Config represents the global rnm configuration.
type Config struct {
	// StateFile stores the last used settings (default state.json next to config.toml).
	StateFile string `toml:"state_file"`

	// JournalFile is the sqlite rename history used by history and undo.
	JournalFile string `toml:"journal_file"`

	// PresetsDir holds named settings presets.
	PresetsDir string `toml:"presets_dir"`

	// Audit enables the JSONL audit log (default true).
	Audit *bool `toml:"audit"`

	// AuditFile is the audit log location.
	AuditFile string `toml:"audit_file"`

	// RememberSettings loads the last used settings at startup and saves them
	// after preview and apply (default true).
	RememberSettings *bool `toml:"remember_settings"`

	// DefaultScope is "file" or "folder".
	DefaultScope string `toml:"default_scope"`

	// LockTimeout bounds how long apply and undo wait for another rnm process,
	// as a Go duration string ("5s", "1m").
	LockTimeout string `toml:"lock_timeout"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// AuditEnabled reports whether the audit log is on.
func (c *Config) AuditEnabled() bool {
	return c.Audit == nil || *c.Audit
}

// Remember reports whether settings persist between runs.
func (c *Config) Remember() bool {
	return c.RememberSettings == nil || *c.RememberSettings
}

// Scope returns the configured default scope.
func (c *Config) Scope() string {
	if s := strings.TrimSpace(c.DefaultScope); s != "" {
		return strings.ToLower(s)
	}
	return DefaultScope
}

// LockWait returns the parsed lock timeout.
func (c *Config) LockWait() (time.Duration, error) {
	raw := strings.TrimSpace(c.LockTimeout)
	if raw == "" {
		return DefaultLockTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: lock_timeout %q: %v", ErrInvalid, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: lock_timeout must not be negative", ErrInvalid)
	}
	return d, nil
}

// Validate checks values that are otherwise only interpreted lazily.
func (c *Config) Validate() error {
	switch c.Scope() {
	case "file", "folder":
	default:
		return fmt.Errorf("%w: default_scope %q (use file or folder)", ErrInvalid, c.DefaultScope)
	}
	_, err := c.LockWait()
	return err
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom loads the configuration from a specific path.
// A missing file yields the default config.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/rnm/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "rnm", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "rnm", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

const defaultConfig = `# rnm configuration

# Where the last used settings are kept (relative to this file).
# state_file = "state.json"

# Rename history used by "rnm history" and "rnm undo".
# journal_file = "journal.db"

# Directory of saved presets.
# presets_dir = "presets"

# Append every executed rename to a JSONL audit log.
# audit = true
# audit_file = "audit.log"

# Start from the last used settings.
# remember_settings = true

# Rename files ("file") or the folders that hold them ("folder").
# default_scope = "file"

# How long apply and undo wait for another rnm process.
# lock_timeout = "5s"

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
`

// CreateDefault creates a commented default config at path if none exists.
func CreateDefault(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
