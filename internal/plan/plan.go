// Package plan turns candidate paths and a settings snapshot into a list of
// collision-free renames.
package plan

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/collect"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/transform"
)

// RenameItem is one planned rename. Both paths are absolute and share a
// parent directory.
type RenameItem struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// Scope selects whether files or the directories holding them are renamed.
type Scope string

const (
	ScopeFile   Scope = "file"
	ScopeFolder Scope = "folder"
)

// Scopes lists the valid scopes.
func Scopes() []Scope {
	return []Scope{ScopeFile, ScopeFolder}
}

// Planner computes rename plans against a filesystem.
type Planner struct {
	fs afero.Fs

	// foldCase treats names that differ only by letter case as the same
	// entry when checking for collisions.
	foldCase bool
}

// New returns a Planner reading from fsys.
func New(fsys afero.Fs) *Planner {
	return &Planner{
		fs:       fsys,
		foldCase: runtime.GOOS == "darwin" || runtime.GOOS == "windows",
	}
}

// Candidates expands inputs into the rows a plan is computed over: files for
// ScopeFile and the distinct target directories for ScopeFolder.
func (p *Planner) Candidates(scope Scope, inputs []string, recurse bool) ([]string, error) {
	switch scope {
	case ScopeFolder:
		return collect.UniqueDirs(p.fs, inputs), nil
	case ScopeFile, "":
		return collect.Collect(p.fs, inputs, recurse)
	}
	return nil, fmt.Errorf("unknown scope %q", scope)
}

// Select dispatches to the planning policy the scope and method call for.
// paths are rows in display order: files for ScopeFile, directories for
// ScopeFolder.
func (p *Planner) Select(scope Scope, paths []string, st settings.Settings) ([]RenameItem, error) {
	if scope == ScopeFolder {
		return p.PlanDirs(paths, st)
	}
	if st.Method == settings.MethodSequence {
		if st.SequencePerFolder {
			return p.PlanInOrderPerDir(paths, st)
		}
		return p.PlanInOrder(paths, st)
	}
	return p.Plan(paths, st)
}

// Plan collects files from paths and numbers them per directory, visiting
// files in sorted path order.
func (p *Planner) Plan(paths []string, st settings.Settings) ([]RenameItem, error) {
	tr, err := transform.New(st, p.fs)
	if err != nil {
		return nil, err
	}
	files, err := collect.Collect(p.fs, paths, tr.Settings().IncludeSubfolders)
	if err != nil {
		return nil, err
	}
	return p.numberPerDir(tr, files), nil
}

// PlanInOrder numbers caller-ordered paths with one counter shared across
// directories.
func (p *Planner) PlanInOrder(ordered []string, st settings.Settings) ([]RenameItem, error) {
	tr, err := transform.New(st, p.fs)
	if err != nil {
		return nil, err
	}
	var raw []RenameItem
	counter := tr.Settings().SequenceStart
	for _, f := range ordered {
		raw = appendChanged(raw, f, tr.File(f, counter))
		counter++
	}
	return p.resolveCollisions(raw), nil
}

// PlanInOrderPerDir numbers caller-ordered paths, restarting the counter for
// each directory.
func (p *Planner) PlanInOrderPerDir(ordered []string, st settings.Settings) ([]RenameItem, error) {
	tr, err := transform.New(st, p.fs)
	if err != nil {
		return nil, err
	}
	return p.numberPerDir(tr, ordered), nil
}

// PlanDirs renames the given directories themselves. Duplicate inputs are
// dropped. The sequence method numbers directories by position; every other
// method sees a counter of 1. Items are returned deepest first so a folder
// inside another planned folder is renamed before its parent moves.
func (p *Planner) PlanDirs(dirs []string, st settings.Settings) ([]RenameItem, error) {
	tr, err := transform.New(st, p.fs)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(dirs))
	var raw []RenameItem
	idx := tr.Settings().SequenceStart
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", d, err)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		parent := filepath.Dir(abs)
		if parent == abs {
			continue
		}

		counter := 1
		if tr.Settings().Method == settings.MethodSequence {
			counter = idx
		}
		idx++

		res := tr.Dir(abs, counter)
		if !res.IsChanged() {
			continue
		}
		raw = append(raw, RenameItem{
			OldPath: abs,
			NewPath: filepath.Join(parent, filepath.Base(res.Path())),
		})
	}
	items := p.resolveCollisions(raw)
	sort.SliceStable(items, func(i, j int) bool {
		return depth(items[i].OldPath) > depth(items[j].OldPath)
	})
	return items, nil
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}

// numberPerDir runs tr over files with one counter per directory, each
// starting at the configured sequence start.
func (p *Planner) numberPerDir(tr *transform.Transformer, files []string) []RenameItem {
	start := tr.Settings().SequenceStart
	counters := make(map[string]int)
	var raw []RenameItem
	for _, f := range files {
		dir := filepath.Dir(f)
		cur, ok := counters[dir]
		if !ok {
			cur = start
		}
		counters[dir] = cur + 1
		raw = appendChanged(raw, f, tr.File(f, cur))
	}
	return p.resolveCollisions(raw)
}

func appendChanged(items []RenameItem, old string, res transform.Result) []RenameItem {
	if !res.IsChanged() {
		return items
	}
	return append(items, RenameItem{OldPath: old, NewPath: res.Path()})
}
