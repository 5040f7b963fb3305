// Package presets stores named settings as YAML documents.
package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/rnm/internal/atomicfile"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/slugs"
)

// ErrNotFound is returned for unknown preset names.
var ErrNotFound = errors.New("preset not found")

const ext = ".yaml"

// Preset is a named settings snapshot.
type Preset struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Settings    settings.Settings `yaml:"settings" json:"settings"`
}

// Store reads and writes presets in one directory.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Dir returns the presets directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a preset name maps to.
func (s *Store) Path(name string) (string, error) {
	slug := slugs.NameSlug(name)
	if slug == "" {
		return "", fmt.Errorf("preset name %q has no usable characters", name)
	}
	return filepath.Join(s.dir, slug+ext), nil
}

// Save validates and writes p, replacing any preset with the same slug.
func (s *Store) Save(p Preset) (string, error) {
	p.Name = strings.TrimSpace(p.Name)
	path, err := s.Path(p.Name)
	if err != nil {
		return "", err
	}
	p.Settings = p.Settings.Normalize()
	if err := p.Settings.Validate(); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode preset: %w", err)
	}
	if err := atomicfile.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write preset %s: %w", path, err)
	}
	return path, nil
}

// Load reads the preset called name.
func (s *Store) Load(name string) (*Preset, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	p, err := s.read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, err
}

func (s *Store) read(path string) (*Preset, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	p := Preset{Settings: settings.Default()}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", path, err)
	}
	p.Settings = p.Settings.Normalize()
	if err := p.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), ext)
	}
	return &p, nil
}

// List returns every readable preset sorted by name. Files that fail to
// parse are reported in skipped.
func (s *Store) List() (list []Preset, skipped []string, err error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read presets: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		p, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			skipped = append(skipped, e.Name())
			continue
		}
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list, skipped, nil
}

// Delete removes the preset called name.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}
	return nil
}
