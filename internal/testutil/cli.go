package testutil

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/aidanlsb/rnm/internal/execute"
	"github.com/aidanlsb/rnm/internal/plan"
)

var (
	buildOnce sync.Once
	binPath   string
	binErr    error
)

// Result is one rnm invocation with its JSON envelope decoded.
type Result struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`

	Raw      string `json:"-"`
	ExitCode int    `json:"-"`
}

// ErrorInfo is the error part of the envelope.
type ErrorInfo struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Suggestion string          `json:"suggestion"`
	Details    json.RawMessage `json:"details"`
}

// Warning is one entry of the envelope's warnings.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Ref     string `json:"ref"`
}

// Plan is the data of preview, and of apply when it stops for confirmation.
type Plan struct {
	Method string            `json:"method"`
	Items  []plan.RenameItem `json:"items"`
}

// Batch is the data of apply, undo and the watch callback.
type Batch struct {
	Batch     int64            `json:"batch"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []execute.Result `json:"results"`
}

// binary builds cmd/rnm once per test process.
func binary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		root, err := moduleRoot()
		if err != nil {
			binErr = err
			return
		}
		dir, err := os.MkdirTemp("", "rnm-bin-*")
		if err != nil {
			binErr = err
			return
		}
		name := "rnm"
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		binPath = filepath.Join(dir, name)
		cmd := exec.Command("go", "build", "-o", binPath, "./cmd/rnm")
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			binErr = errors.New(err.Error() + "\n" + string(out))
		}
	})
	if binErr != nil {
		t.Fatalf("build rnm: %v", binErr)
	}
	return binPath
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs rnm with --json inside the tree, using the tree's config.
func (tr *TestTree) RunCLI(args ...string) *Result {
	tr.t.Helper()

	cmd := exec.Command(binary(tr.t), append([]string{"--config", tr.ConfigPath, "--json"}, args...)...)
	cmd.Dir = tr.Path
	out, err := cmd.Output()

	res := &Result{Raw: string(out)}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case err != nil:
		res.ExitCode = -1
	}
	if err := json.Unmarshal(out, res); err != nil {
		res.OK = false
		res.Error = &ErrorInfo{Code: "PARSE_ERROR", Message: err.Error()}
	}
	return res
}

// MustSucceed fails the test unless the command reported ok.
func (r *Result) MustSucceed(t *testing.T) *Result {
	t.Helper()
	if !r.OK {
		msg := "unknown error"
		if r.Error != nil {
			msg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("command failed: %s\nraw: %s", msg, r.Raw)
	}
	return r
}

// MustFail fails the test unless the command failed with code.
func (r *Result) MustFail(t *testing.T, code string) *Result {
	t.Helper()
	if r.OK || r.Error == nil {
		t.Fatalf("expected %s, command succeeded\nraw: %s", code, r.Raw)
	}
	if r.Error.Code != code {
		t.Fatalf("error code = %s (%s), want %s", r.Error.Code, r.Error.Message, code)
	}
	return r
}

// Decode unmarshals the envelope's data into v.
func (r *Result) Decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("decode data: %v\nraw: %s", err, r.Raw)
	}
}

// Plan decodes preview data.
func (r *Result) Plan(t *testing.T) Plan {
	t.Helper()
	var p Plan
	r.Decode(t, &p)
	return p
}

// Batch decodes executed batch data.
func (r *Result) Batch(t *testing.T) Batch {
	t.Helper()
	var b Batch
	r.Decode(t, &b)
	return b
}

// AssertRenamed checks that the batch renamed each old base name to the new
// base name that follows it, with every other result also succeeding.
func (r *Result) AssertRenamed(t *testing.T, pairs ...string) {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("AssertRenamed needs old/new pairs, got %v", pairs)
	}
	b := r.Batch(t)
	got := make(map[string]string, len(b.Results))
	for _, res := range b.Results {
		if res.Status != execute.StatusRenamed {
			t.Errorf("%s: status %s (%s)", res.OldPath, res.Status, res.Error)
		}
		got[filepath.Base(res.OldPath)] = filepath.Base(res.NewPath)
	}
	for i := 0; i < len(pairs); i += 2 {
		if name, ok := got[pairs[i]]; !ok || name != pairs[i+1] {
			t.Errorf("%s renamed to %q, want %q", pairs[i], name, pairs[i+1])
		}
	}
}

// AssertSuggests checks that the error suggestion mentions every word.
func (r *Result) AssertSuggests(t *testing.T, words ...string) {
	t.Helper()
	if r.Error == nil {
		t.Fatalf("no error in %s", r.Raw)
	}
	for _, w := range words {
		if !strings.Contains(r.Error.Suggestion, w) {
			t.Errorf("suggestion %q does not mention %q", r.Error.Suggestion, w)
		}
	}
}
