package plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/rnm/internal/collect"
	"github.com/aidanlsb/rnm/internal/transform"
)

// DuplicateName returns the n-th duplicate variant of a file name:
// "a.txt" becomes "a[duplicate001].txt" for n = 1.
func DuplicateName(name string, n int) string {
	base, ext := transform.SplitExt(name)
	return fmt.Sprintf("%s[duplicate%03d]%s", base, n, ext)
}

// ErrNoFreeName is returned when no usable duplicate variant of a name is
// free.
var ErrNoFreeName = errors.New("no free name")

const maxDuplicates = 9999

// FreePath returns path itself when taken reports it free, otherwise the
// first duplicate variant in the same directory that is free. It stops with
// ErrNoFreeName once a variant is no longer a valid name or the duplicate
// counter runs out, and with taken's error when a lookup fails.
func FreePath(path string, taken func(string) (bool, error)) (string, error) {
	dir, name := filepath.Split(path)
	cand := path
	for n := 1; ; n++ {
		if !transform.ValidName(filepath.Base(cand)) {
			return "", fmt.Errorf("%w: %s", ErrNoFreeName, cand)
		}
		busy, err := taken(cand)
		if err != nil {
			return "", err
		}
		if !busy {
			return cand, nil
		}
		if n > maxDuplicates {
			return "", fmt.Errorf("%w: %s", ErrNoFreeName, path)
		}
		cand = filepath.Join(dir, DuplicateName(name, n))
	}
}

// resolveCollisions makes every target unique. A target is taken when an
// earlier item already claimed it or when it exists on disk and is not one
// of the items' own sources. Items without a usable free target are dropped
// and keep their name.
func (p *Planner) resolveCollisions(items []RenameItem) []RenameItem {
	if len(items) == 0 {
		return nil
	}
	sources := make(map[string]bool, len(items))
	for _, it := range items {
		sources[p.key(it.OldPath)] = true
	}

	assigned := make(map[string]bool, len(items))
	out := make([]RenameItem, 0, len(items))
	for _, it := range items {
		final, err := FreePath(it.NewPath, func(cand string) (bool, error) {
			k := p.key(cand)
			if assigned[k] {
				return true, nil
			}
			if sources[k] {
				return false, nil
			}
			return collect.Lookup(p.fs, cand)
		})
		if err != nil {
			continue
		}
		assigned[p.key(final)] = true
		out = append(out, RenameItem{OldPath: it.OldPath, NewPath: final})
	}
	return out
}

func (p *Planner) key(path string) string {
	if p.foldCase {
		return strings.ToLower(path)
	}
	return path
}
