package atomicfile

import (
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFile(t *testing.T) {
	fsys := afero.NewMemMapFs()

	if err := WriteFile(fsys, "/state/nested/state.json", []byte("one"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(fsys, "/state/nested/state.json", []byte("two"), 0); err != nil {
		t.Fatalf("WriteFile overwrite: %v", err)
	}

	got, err := afero.ReadFile(fsys, "/state/nested/state.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("content = %q, want two", got)
	}

	entries, err := afero.ReadDir(fsys, "/state/nested")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, got %d entries", len(entries))
	}
}
