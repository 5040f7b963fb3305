package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/atomicfile"
	"github.com/aidanlsb/rnm/internal/settings"
)

const (
	// StateVersion is the current state file schema version.
	StateVersion = 1
)

// State is the session state kept between runs: the last used settings,
// keyed by setting name at the top level, plus the scope and any opaque
// layout blobs a front end stored.
type State struct {
	Version int `json:"version"`
	settings.Settings
	Scope  string            `json:"rename_scope,omitempty"`
	Layout map[string][]byte `json:"layout,omitempty"`
}

// DefaultState returns the state used before anything was saved.
func DefaultState() *State {
	return &State{Version: StateVersion, Settings: settings.Default()}
}

// LoadState reads the state file. Keys missing from the file keep their
// default values. Returns the default state when the file does not exist.
func LoadState(fsys afero.Fs, path string) (*State, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultState(), nil
		}
		return nil, fmt.Errorf("failed to read state %s: %w", path, err)
	}

	state := DefaultState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	if state.Version == 0 {
		state.Version = StateVersion
	}
	state.Settings = state.Settings.Normalize()
	state.Scope = strings.TrimSpace(state.Scope)
	if err := state.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("state %s: %w", path, err)
	}
	return state, nil
}

// SaveState writes the state file atomically.
func SaveState(fsys afero.Fs, path string, state *State) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("state path is required")
	}
	if state == nil {
		state = DefaultState()
	}

	normalized := *state
	if normalized.Version == 0 {
		normalized.Version = StateVersion
	}
	normalized.Settings = normalized.Settings.Normalize()

	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := atomicfile.WriteFile(fsys, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write state %s: %w", path, err)
	}
	return nil
}
