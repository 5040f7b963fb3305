// Package lastplan persists the most recent preview so a later apply can
// execute exactly what was shown.
package lastplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/atomicfile"
	"github.com/aidanlsb/rnm/internal/collect"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/settings"
)

// ErrNoLastPlan is returned when no preview has been stored.
var ErrNoLastPlan = errors.New("no previewed plan available")

// LastPlan is a stored preview.
type LastPlan struct {
	CreatedAt time.Time         `json:"created_at"`
	Scope     plan.Scope        `json:"scope"`
	Order     collect.Order     `json:"order"`
	Inputs    []string          `json:"inputs"`
	Settings  settings.Settings `json:"settings"`
	Items     []plan.RenameItem `json:"items"`
}

// Write saves lp to path.
func Write(fsys afero.Fs, path string, lp *LastPlan) error {
	if lp.CreatedAt.IsZero() {
		lp.CreatedAt = time.Now()
	}
	data, err := json.MarshalIndent(lp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal last plan: %w", err)
	}
	if err := atomicfile.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write last plan: %w", err)
	}
	return nil
}

// Read loads the stored preview.
func Read(fsys afero.Fs, path string) (*LastPlan, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoLastPlan
		}
		return nil, fmt.Errorf("failed to read last plan: %w", err)
	}
	var lp LastPlan
	if err := json.Unmarshal(data, &lp); err != nil {
		return nil, fmt.Errorf("failed to parse last plan: %w", err)
	}
	return &lp, nil
}

// Clear removes the stored preview. A missing file is not an error.
func Clear(fsys afero.Fs, path string) error {
	if err := fsys.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Missing returns the sources of lp that no longer exist.
func (lp *LastPlan) Missing(fsys afero.Fs) []string {
	var out []string
	for _, it := range lp.Items {
		if !collect.Exists(fsys, it.OldPath) {
			out = append(out, it.OldPath)
		}
	}
	return out
}

// Present returns the items whose sources still exist.
func (lp *LastPlan) Present(fsys afero.Fs) []plan.RenameItem {
	var out []plan.RenameItem
	for _, it := range lp.Items {
		if collect.Exists(fsys, it.OldPath) {
			out = append(out, it)
		}
	}
	return out
}
