// Package execute performs a rename plan in two phases: every source first
// moves to a hidden temporary name, then each temporary moves to its final
// name.
package execute

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/collect"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/transform"
)

// TempPrefix starts every temporary name the executor creates.
const TempPrefix = ".__rnm_tmp__"

// IsTempName reports whether a base name is one of the executor's temporary
// names.
func IsTempName(name string) bool {
	return strings.HasPrefix(name, TempPrefix)
}

// Status classifies how a planned rename ended.
type Status string

const (
	// StatusRenamed means the item reached its final name.
	StatusRenamed Status = "renamed"
	// StatusFailed means the item was not renamed and sits at its source.
	StatusFailed Status = "failed"
	// StatusRolledBack means the item was parked and then moved back to its
	// source because another item of its pass could not be parked.
	StatusRolledBack Status = "rolled_back"
	// StatusStranded means the item was left under its temporary name.
	StatusStranded Status = "stranded"
)

// StatusOf returns the status implied by a success flag, for results
// recorded without one.
func StatusOf(ok bool) Status {
	if ok {
		return StatusRenamed
	}
	return StatusFailed
}

// Result is the outcome of one planned rename.
type Result struct {
	OldPath string
	NewPath string // final path used, or the intended one when nothing moved
	OK      bool
	Status  Status
	Error   string
}

type resultJSON struct {
	OldPath string  `json:"old_path"`
	NewPath string  `json:"new_path"`
	OK      bool    `json:"ok"`
	Status  Status  `json:"status"`
	Error   *string `json:"error"`
}

// MarshalJSON encodes a missing error as null.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{OldPath: r.OldPath, NewPath: r.NewPath, OK: r.OK, Status: r.Status}
	if out.Status == "" {
		out.Status = StatusOf(r.OK)
	}
	if r.Error != "" {
		out.Error = &r.Error
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{OldPath: in.OldPath, NewPath: in.NewPath, OK: in.OK, Status: in.Status}
	if r.Status == "" {
		r.Status = StatusOf(in.OK)
	}
	if in.Error != nil {
		r.Error = *in.Error
	}
	return nil
}

// Summarize counts successful and failed results.
func Summarize(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Option configures an Executor.
type Option func(*Executor)

// WithTempName overrides how temporary names are derived from source paths.
func WithTempName(fn func(path string) string) Option {
	return func(e *Executor) {
		e.tempName = fn
	}
}

// Executor applies rename plans to a filesystem.
type Executor struct {
	fs       afero.Fs
	tempName func(path string) string
}

// New returns an Executor writing to fsys.
func New(fsys afero.Fs, opts ...Option) *Executor {
	e := &Executor{fs: fsys, tempName: TempName}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TempName returns a hidden, randomly suffixed sibling of path.
func TempName(path string) string {
	dir, name := filepath.Split(path)
	base, ext := transform.SplitExt(name)
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return filepath.Join(dir, TempPrefix+base+"__"+id+ext)
}

// Apply renames every item and returns one Result per item, in order.
//
// Items run in passes: a new pass starts at the first item whose paths lie
// inside, or contain, a path of an item already in the current pass, so a
// folder nested in another planned folder moves before or after its parent
// rather than with it. Within a pass, if any source cannot be moved to its
// temporary name, the temporaries made so far are moved back and every item
// of the pass fails. Once all sources are parked, each item picks a free
// final name against the live directory and is renamed independently; a
// failure there only affects that item.
func (e *Executor) Apply(items []plan.RenameItem) []Result {
	if len(items) == 0 {
		return nil
	}
	results := make([]Result, 0, len(items))
	for _, pass := range passes(items) {
		results = append(results, e.applyPass(pass)...)
	}
	return results
}

func (e *Executor) applyPass(items []plan.RenameItem) []Result {
	temps := make([]string, len(items))
	for i, it := range items {
		tmp := e.tempName(it.OldPath)
		if err := e.fs.Rename(it.OldPath, tmp); err != nil {
			return e.abort(items, temps[:i], err)
		}
		temps[i] = tmp
	}

	results := make([]Result, len(items))
	placed := make(map[string]bool, len(items))
	for i, it := range items {
		final, err := plan.FreePath(it.NewPath, func(cand string) (bool, error) {
			if placed[cand] {
				return true, nil
			}
			return collect.Lookup(e.fs, cand)
		})
		if err != nil {
			results[i] = e.restore(it, temps[i], it.NewPath, err)
			continue
		}
		if err := e.fs.Rename(temps[i], final); err != nil {
			results[i] = e.restore(it, temps[i], final, err)
			continue
		}
		placed[final] = true
		results[i] = Result{OldPath: it.OldPath, NewPath: final, OK: true, Status: StatusRenamed}
	}
	return results
}

// passes splits items into consecutive runs that can be parked together.
func passes(items []plan.RenameItem) [][]plan.RenameItem {
	var out [][]plan.RenameItem
	start := 0
	for i := range items {
		for _, prev := range items[start:i] {
			if overlaps(items[i], prev) {
				out = append(out, items[start:i])
				start = i
				break
			}
		}
	}
	return append(out, items[start:])
}

// overlaps reports whether a path of one item lies strictly inside a path of
// the other.
func overlaps(a, b plan.RenameItem) bool {
	for _, x := range []string{a.OldPath, a.NewPath} {
		for _, y := range []string{b.OldPath, b.NewPath} {
			if within(x, y) || within(y, x) {
				return true
			}
		}
	}
	return false
}

func within(path, dir string) bool {
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}

// abort undoes a partial first phase. parked holds the temporary names of
// the items moved before cause occurred.
func (e *Executor) abort(items []plan.RenameItem, parked []string, cause error) []Result {
	results := make([]Result, len(items))
	for i, it := range items {
		results[i] = Result{OldPath: it.OldPath, NewPath: it.NewPath, Status: StatusFailed, Error: cause.Error()}
	}
	for i := len(parked) - 1; i >= 0; i-- {
		it := items[i]
		if err := e.fs.Rename(parked[i], it.OldPath); err != nil {
			results[i].NewPath = parked[i]
			results[i].Status = StatusStranded
			results[i].Error = fmt.Sprintf("rollback failed, left at %s: %v", parked[i], err)
			continue
		}
		results[i].Status = StatusRolledBack
		results[i].Error = "rolled back: " + cause.Error()
	}
	return results
}

// restore moves a parked item back to its source path after its final
// rename failed, unless something else now occupies the source path.
func (e *Executor) restore(it plan.RenameItem, tmp, final string, cause error) Result {
	res := Result{OldPath: it.OldPath, NewPath: final, Status: StatusFailed, Error: cause.Error()}
	if collect.Exists(e.fs, it.OldPath) {
		res.NewPath = tmp
		res.Status = StatusStranded
		res.Error = fmt.Sprintf("%v; left at %s", cause, tmp)
		return res
	}
	if err := e.fs.Rename(tmp, it.OldPath); err != nil {
		res.NewPath = tmp
		res.Status = StatusStranded
		res.Error = fmt.Sprintf("%v; left at %s: %v", cause, tmp, err)
	}
	return res
}
