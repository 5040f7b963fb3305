// Package atomicfile writes files by renaming a fully written sibling into
// place.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFile writes data to path on fsys atomically (best-effort cross-platform).
//
// It writes to a temporary file in the same directory and renames it into place,
// creating the directory first when needed.
//
// If perm is 0, WriteFile keeps the existing file's mode and otherwise falls back
// to 0644.
func WriteFile(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		if st, err := fsys.Stat(path); err == nil {
			perm = st.Mode().Perm()
		} else {
			perm = 0o644
		}
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = fsys.Remove(tmpPath)
		}
	}()

	_ = fsys.Chmod(tmpPath, perm)

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if err := fsys.Rename(tmpPath, path); err != nil {
		_ = fsys.Remove(path)
		if err2 := fsys.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename temp file: %w", err)
		}
	}

	committed = true
	return nil
}
