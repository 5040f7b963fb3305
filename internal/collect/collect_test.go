package collect

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func memTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, f := range files {
		if err := afero.WriteFile(fsys, f, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	return fsys
}

func TestCollect(t *testing.T) {
	fsys := memTree(t,
		"/in/b.txt",
		"/in/a.txt",
		"/in/sub/c.txt",
		"/in/sub/deep/d.txt",
		"/loose.txt",
	)

	tests := []struct {
		name    string
		inputs  []string
		recurse bool
		want    []string
	}{
		{
			name:   "shallow",
			inputs: []string{"/in"},
			want:   []string{"/in/a.txt", "/in/b.txt"},
		},
		{
			name:    "recursive",
			inputs:  []string{"/in"},
			recurse: true,
			want:    []string{"/in/a.txt", "/in/b.txt", "/in/sub/c.txt", "/in/sub/deep/d.txt"},
		},
		{
			name:   "file passes through and output is sorted",
			inputs: []string{"/loose.txt", "/in/sub"},
			want:   []string{"/in/sub/c.txt", "/loose.txt"},
		},
		{
			name:   "missing input skipped",
			inputs: []string{"/nope", "/in/a.txt"},
			want:   []string{"/in/a.txt"},
		},
		{
			name:   "same file from two inputs is kept twice",
			inputs: []string{"/in/a.txt", "/in/a.txt"},
			want:   []string{"/in/a.txt", "/in/a.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(fsys, tt.inputs, tt.recurse)
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Collect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUniqueDirs(t *testing.T) {
	fsys := memTree(t, "/a/x.txt", "/a/y.txt", "/b/sub/z.txt")

	got := UniqueDirs(fsys, []string{"/b/sub", "/a/x.txt", "/a/y.txt", "/a", "/missing"})
	want := []string{"/a", "/b/sub"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueDirs = %v, want %v", got, want)
	}
}

func TestArrangeNatural(t *testing.T) {
	in := []string{"/d/file10.txt", "/d/File2.txt", "/d/file1.txt", "/a/file02.txt"}

	got := Arrange(in, OrderNatural)
	want := []string{"/d/file1.txt", "/d/File2.txt", "/a/file02.txt", "/d/file10.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("natural = %v, want %v", got, want)
	}

	given := Arrange(in, OrderGiven)
	if !reflect.DeepEqual(given, in) {
		t.Errorf("given = %v, want %v", given, in)
	}
	if &given[0] == &in[0] {
		t.Error("Arrange must not alias its input")
	}

	sorted := Arrange(in, OrderSorted)
	if sorted[0] != "/a/file02.txt" || sorted[1] != "/d/File2.txt" {
		t.Errorf("sorted = %v", sorted)
	}
}

func TestNaturalLessLeadingZeros(t *testing.T) {
	if !NaturalLess("/x/img1.png", "/x/img01.png") {
		t.Error("expected img1 < img01 when numerically equal")
	}
	if NaturalLess("/x/img01.png", "/x/img1.png") {
		t.Error("expected img01 !< img1")
	}
}
