// Package testutil provides reusable test utilities for rnm integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// TestTree is a temporary directory of files to rename, paired with an
// isolated config directory so state, presets and history never touch the
// user's own.
type TestTree struct {
	Path       string
	ConfigPath string
	t          *testing.T
	files      map[string]string
	dirs       []string
	config     string
}

// NewTestTree creates a new test tree builder.
// Call Build() to create the actual directories.
func NewTestTree(t *testing.T) *TestTree {
	t.Helper()
	return &TestTree{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file relative to the tree root.
func (tr *TestTree) WithFile(path, content string) *TestTree {
	tr.files[path] = content
	return tr
}

// WithFiles adds empty-ish files whose content is their own name.
func (tr *TestTree) WithFiles(paths ...string) *TestTree {
	for _, p := range paths {
		tr.files[p] = p
	}
	return tr
}

// WithDir adds an empty directory.
func (tr *TestTree) WithDir(path string) *TestTree {
	tr.dirs = append(tr.dirs, path)
	return tr
}

// WithConfig sets the config.toml content.
func (tr *TestTree) WithConfig(toml string) *TestTree {
	tr.config = toml
	return tr
}

// Build creates the tree and the config directory.
func (tr *TestTree) Build() *TestTree {
	tr.t.Helper()

	tr.Path = tr.t.TempDir()
	tr.ConfigPath = filepath.Join(tr.t.TempDir(), "config.toml")

	if tr.config != "" {
		if err := os.WriteFile(tr.ConfigPath, []byte(tr.config), 0644); err != nil {
			tr.t.Fatalf("failed to write config: %v", err)
		}
	}
	for _, d := range tr.dirs {
		if err := os.MkdirAll(tr.Abs(d), 0755); err != nil {
			tr.t.Fatalf("failed to create directory %s: %v", d, err)
		}
	}
	for path, content := range tr.files {
		tr.writeFile(path, content)
	}
	return tr
}

// Abs returns the absolute path of relPath inside the tree.
func (tr *TestTree) Abs(relPath string) string {
	return filepath.Join(tr.Path, filepath.FromSlash(relPath))
}

// ConfigDir is the directory holding config.toml and derived state.
func (tr *TestTree) ConfigDir() string {
	return filepath.Dir(tr.ConfigPath)
}

func (tr *TestTree) writeFile(relPath, content string) {
	tr.t.Helper()
	fullPath := tr.Abs(relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		tr.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		tr.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the tree.
func (tr *TestTree) ReadFile(relPath string) string {
	tr.t.Helper()
	content, err := os.ReadFile(tr.Abs(relPath))
	if err != nil {
		tr.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// List returns the names in a tree directory, sorted.
func (tr *TestTree) List(relDir string) []string {
	tr.t.Helper()
	entries, err := os.ReadDir(tr.Abs(relDir))
	if err != nil {
		tr.t.Fatalf("failed to list %s: %v", relDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
