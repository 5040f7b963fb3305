// Package collect turns user-supplied paths into the candidate list a rename
// plan operates on.
package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Collect expands inputs into a sorted list of file paths.
//
// Directories expand to every nested file when recurse is set, otherwise to
// their immediate regular-file children. Plain files pass through unchanged.
// Inputs that do not exist are skipped. An input directory that cannot be
// read is an error.
func Collect(fsys afero.Fs, inputs []string, recurse bool) ([]string, error) {
	var out []string
	for _, in := range inputs {
		p := absolute(in)
		info, err := fsys.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() {
				out = append(out, p)
			}
			continue
		}

		files, err := filesInDir(fsys, p, recurse)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	sort.Strings(out)
	return out, nil
}

func filesInDir(fsys afero.Fs, dir string, recurse bool) ([]string, error) {
	var out []string
	if recurse {
		err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
		return out, nil
	}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.Mode().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// UniqueDirs maps inputs to the directories a folder-scope rename targets:
// a directory stands for itself and a file for its parent. The result is
// deduplicated and sorted.
func UniqueDirs(fsys afero.Fs, inputs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, in := range inputs {
		p := absolute(in)
		info, err := fsys.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			p = filepath.Dir(p)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func absolute(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Exists reports whether path names an existing entry. A path that cannot
// be looked up does not exist.
func Exists(fsys afero.Fs, path string) bool {
	ok, _ := Lookup(fsys, path)
	return ok
}

// Lookup reports whether path names an existing entry. Stat failures other
// than not-exist, such as a name too long for the filesystem or a denied
// parent, are returned as errors.
func Lookup(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	}
	return false, err
}
