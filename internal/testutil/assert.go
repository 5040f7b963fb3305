package testutil

import (
	"os"
	"reflect"
	"testing"
)

// AssertExists fails the test if the path does not exist.
func (tr *TestTree) AssertExists(relPath string) {
	tr.t.Helper()
	if _, err := os.Stat(tr.Abs(relPath)); os.IsNotExist(err) {
		tr.t.Errorf("expected %s to exist", relPath)
	}
}

// AssertNotExists fails the test if the path exists.
func (tr *TestTree) AssertNotExists(relPath string) {
	tr.t.Helper()
	if _, err := os.Stat(tr.Abs(relPath)); err == nil {
		tr.t.Errorf("expected %s to not exist", relPath)
	}
}

// AssertContent fails the test if the file content differs from want.
func (tr *TestTree) AssertContent(relPath, want string) {
	tr.t.Helper()
	if got := tr.ReadFile(relPath); got != want {
		tr.t.Errorf("content of %s = %q, want %q", relPath, got, want)
	}
}

// AssertNames fails the test if a directory does not hold exactly names.
func (tr *TestTree) AssertNames(relDir string, names ...string) {
	tr.t.Helper()
	got := tr.List(relDir)
	if !reflect.DeepEqual(got, names) {
		tr.t.Errorf("entries of %s = %v, want %v", relDir, got, names)
	}
}

// AssertHasWarning checks that the result carries a warning with code.
func (r *Result) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("no %s warning in %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *Result) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("unexpected warnings: %+v", r.Warnings)
	}
}
