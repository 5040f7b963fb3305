// Package transform computes the new name of a single path under a set of
// rename settings.
package transform

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/settings"
)

// Result is the outcome of transforming one path: either a changed full path
// or Unchanged.
type Result struct {
	path    string
	changed bool
}

// Unchanged reports that a path keeps its current name.
var Unchanged = Result{}

// Changed wraps a new full path.
func Changed(path string) Result {
	return Result{path: path, changed: true}
}

// IsChanged reports whether the path gets a new name.
func (r Result) IsChanged() bool { return r.changed }

// Path returns the new full path, or "" when unchanged.
func (r Result) Path() string { return r.path }

func (r Result) String() string {
	if !r.changed {
		return "unchanged"
	}
	return r.path
}

// Transformer applies one Settings snapshot to many paths. Regular
// expressions are compiled once in New.
type Transformer struct {
	st     settings.Settings
	fs     afero.Fs
	find   *regexp.Regexp
	anchor *regexp.Regexp
}

// New validates st and prepares a Transformer. fsys is only consulted for
// file timestamps by the date method.
func New(st settings.Settings, fsys afero.Fs) (*Transformer, error) {
	st = st.Normalize()
	if err := st.Validate(); err != nil {
		return nil, err
	}
	t := &Transformer{st: st, fs: fsys}

	if st.Method != settings.MethodMoveToken {
		return t, nil
	}
	var err error
	if st.MoveRegex && st.MoveFind != "" {
		if t.find, err = regexp.Compile(st.MoveFind); err != nil {
			return nil, fmt.Errorf("%w: search pattern: %v", settings.ErrInvalid, err)
		}
	}
	if st.MoveAnchorRegex && st.MoveAnchor != "" {
		if t.anchor, err = regexp.Compile(st.MoveAnchor); err != nil {
			return nil, fmt.Errorf("%w: anchor pattern: %v", settings.ErrInvalid, err)
		}
	}
	return t, nil
}

// Settings returns the normalized settings in use.
func (t *Transformer) Settings() settings.Settings { return t.st }

// File transforms a file path, splitting its extension first.
func (t *Transformer) File(path string, counter int) Result {
	base, ext := SplitExt(filepath.Base(path))
	return t.Name(path, base, ext, counter)
}

// Dir transforms a directory path. The whole base name is the name and the
// extension is empty.
func (t *Transformer) Dir(path string, counter int) Result {
	return t.Name(path, filepath.Base(path), "", counter)
}

// Name computes the new full path for path whose base name is base+ext.
// counter feeds the sequence method. A result identical to the current name,
// or one that would not be a plain name in the same directory, is Unchanged.
func (t *Transformer) Name(path, base, ext string, counter int) Result {
	newBase, newExt, ok := t.apply(path, base, ext, counter)
	if !ok {
		return Unchanged
	}
	full := newBase + newExt
	if full == base+ext || !ValidName(full) {
		return Unchanged
	}
	return Changed(filepath.Join(filepath.Dir(path), full))
}

func (t *Transformer) apply(path, base, ext string, counter int) (string, string, bool) {
	st := t.st
	switch st.Method {
	case settings.MethodReplace:
		if st.IncludeExtension {
			full := t.replace(base + ext)
			b, e := SplitExt(full)
			return b, e, true
		}
		return t.replace(base), ext, true

	case settings.MethodDeleteBetween:
		return deleteBetween(base, st.MarkerStart, st.MarkerEnd), ext, true

	case settings.MethodSequence:
		seq := fmt.Sprintf("%0*d", st.SequenceDigits, counter)
		return place(base, seq, st.SequenceMode, "_"), ext, true

	case settings.MethodDate:
		stamp, err := t.stamp(path)
		if err != nil {
			return "", "", false
		}
		return place(base, stamp, st.DateMode, "_"), ext, true

	case settings.MethodAddText:
		return place(base, st.AddText, st.TextPosition, ""), ext, true

	case settings.MethodFolderName:
		folder := baseName(filepath.Dir(path))
		if st.IncludeParentFolder {
			folder = baseName(filepath.Dir(filepath.Dir(path))) + "_" + folder
		}
		return place(base, folder, st.FolderPosition, "_"), ext, true

	case settings.MethodMoveToken:
		moved, ok := t.moveToken(base)
		return moved, ext, ok
	}
	return base, ext, true
}

func (t *Transformer) replace(s string) string {
	st := t.st
	if st.Target != "" {
		s = strings.ReplaceAll(s, st.Target, st.Replacement)
	}
	if st.SecondActive && st.TargetSecond != "" {
		s = strings.ReplaceAll(s, st.TargetSecond, st.ReplacementSecond)
	}
	return s
}

// deleteBetween removes the span from the first start marker through the
// first end marker found after it, markers included.
func deleteBetween(name, start, end string) string {
	if start == "" || end == "" {
		return name
	}
	s := strings.Index(name, start)
	if s < 0 {
		return name
	}
	after := s + len(start)
	rel := strings.Index(name[after:], end)
	if rel < 0 {
		return name
	}
	return name[:s] + name[after+rel+len(end):]
}

// place puts fragment in place of, before, or after name.
func place(name, fragment string, where settings.Placement, sep string) string {
	switch where {
	case settings.PlaceFull:
		return fragment
	case settings.PlacePrefix:
		return fragment + sep + name
	}
	return name + sep + fragment
}

// baseName is filepath.Base except that the filesystem root has no name.
func baseName(p string) string {
	b := filepath.Base(p)
	if b == "." || b == string(filepath.Separator) || b == "/" {
		return ""
	}
	return b
}

// MaxNameBytes is the longest file name most filesystems accept.
const MaxNameBytes = 255

// ValidName reports whether name can be used as a single entry name in a
// directory.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." || len(name) > MaxNameBytes {
		return false
	}
	return !strings.ContainsAny(name, "/\x00"+string(filepath.Separator))
}

// SplitExt splits name into base and extension the way most file managers
// do: the extension starts at the last dot, and leading dots belong to the
// base, so ".bashrc" has no extension.
func SplitExt(name string) (base, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.TrimLeft(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}
