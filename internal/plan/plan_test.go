package plan

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/settings"
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

func newPlanner(fsys afero.Fs) *Planner {
	p := New(fsys)
	p.foldCase = false
	return p
}

func sequenceSettings() settings.Settings {
	st := settings.Default()
	st.Method = settings.MethodSequence
	st.SequencePerFolder = true
	return st
}

func newPaths(items []RenameItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.NewPath
	}
	return out
}

func TestPlanSequencePerDirectory(t *testing.T) {
	fsys := memTree(t, "/a/x.txt", "/a/y.txt", "/b/z.txt")
	p := newPlanner(fsys)

	items, err := p.Plan([]string{"/a/x.txt", "/a/y.txt", "/b/z.txt"}, sequenceSettings())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []string{"/a/001.txt", "/a/002.txt", "/b/001.txt"}
	if got := newPaths(items); !reflect.DeepEqual(got, want) {
		t.Errorf("Plan = %v, want %v", got, want)
	}
}

func TestPlanCollectsDirectories(t *testing.T) {
	fsys := memTree(t, "/in/b.txt", "/in/a.txt", "/in/sub/c.txt")
	p := newPlanner(fsys)

	st := sequenceSettings()
	st.SequenceMode = settings.PlaceSuffix
	st.SequenceDigits = 2
	st.SequenceStart = 5
	st.IncludeSubfolders = false

	items, err := p.Plan([]string{"/in"}, st)
	if err != nil {
		t.Fatal(err)
	}
	want := []RenameItem{
		{OldPath: "/in/a.txt", NewPath: "/in/a_05.txt"},
		{OldPath: "/in/b.txt", NewPath: "/in/b_06.txt"},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("Plan = %+v, want %+v", items, want)
	}
}

func TestPlanInOrder(t *testing.T) {
	fsys := memTree(t, "/a/x.txt", "/a/y.txt", "/b/z.txt")
	p := newPlanner(fsys)
	ordered := []string{"/b/z.txt", "/a/y.txt", "/a/x.txt"}

	global, err := p.PlanInOrder(ordered, sequenceSettings())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := newPaths(global), []string{"/b/001.txt", "/a/002.txt", "/a/003.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PlanInOrder = %v, want %v", got, want)
	}

	perDir, err := p.PlanInOrderPerDir(ordered, sequenceSettings())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := newPaths(perDir), []string{"/b/001.txt", "/a/001.txt", "/a/002.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PlanInOrderPerDir = %v, want %v", got, want)
	}
}

func TestPlanExcludesUnchanged(t *testing.T) {
	fsys := memTree(t, "/d/foo_bar.txt", "/d/plain.txt")
	p := newPlanner(fsys)

	st := settings.Default()
	st.Target, st.Replacement = "bar", "baz"
	items, err := p.Plan([]string{"/d"}, st)
	if err != nil {
		t.Fatal(err)
	}
	want := []RenameItem{{OldPath: "/d/foo_bar.txt", NewPath: "/d/foo_baz.txt"}}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("Plan = %+v, want %+v", items, want)
	}
}

func TestCollisionResolution(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		st    func() settings.Settings
		want  []string
	}{
		{
			name:  "two items share a target",
			files: []string{"/d/a_1.txt", "/d/a_2.txt"},
			st: func() settings.Settings {
				st := settings.Default()
				st.Target = "_1"
				st.SecondActive = true
				st.TargetSecond = "_2"
				return st
			},
			want: []string{"/d/a.txt", "/d/a[duplicate001].txt"},
		},
		{
			name:  "foreign file on disk",
			files: []string{"/d/x_old.txt", "/d/x.txt", "/d/x[duplicate001].txt"},
			st: func() settings.Settings {
				st := settings.Default()
				st.Target = "_old"
				return st
			},
			want: []string{"/d/x[duplicate002].txt"},
		},
		{
			name:  "own sources are not collisions",
			files: []string{"/d/1.txt", "/d/2.txt"},
			st: func() settings.Settings {
				st := sequenceSettings()
				st.SequenceDigits = 1
				st.SequenceStart = 2
				return st
			},
			want: []string{"/d/2.txt", "/d/3.txt"},
		},
		{
			name:  "same name in different directories",
			files: []string{"/a/x_1.txt", "/b/x_1.txt"},
			st: func() settings.Settings {
				st := settings.Default()
				st.Target = "_1"
				return st
			},
			want: []string{"/a/x.txt", "/b/x.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlanner(memTree(t, tt.files...))
			items, err := p.Plan(tt.files, tt.st())
			if err != nil {
				t.Fatal(err)
			}
			if got := newPaths(items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("targets = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollisionFoldCase(t *testing.T) {
	files := []string{"/d/A_1.txt", "/d/a_2.txt"}
	st := settings.Default()
	st.Target = "_1"
	st.SecondActive = true
	st.TargetSecond = "_2"

	p := newPlanner(memTree(t, files...))
	items, err := p.Plan(files, st)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := newPaths(items), []string{"/d/A.txt", "/d/a.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("case-sensitive = %v, want %v", got, want)
	}

	p.foldCase = true
	items, err = p.Plan(files, st)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := newPaths(items), []string{"/d/A.txt", "/d/a[duplicate001].txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("case-insensitive = %v, want %v", got, want)
	}
}

func TestPlanDirs(t *testing.T) {
	fsys := memTree(t, "/root/b/f.txt", "/root/a/f.txt", "/root/c.d/f.txt")
	p := newPlanner(fsys)

	st := settings.Default()
	st.Method = settings.MethodSequence
	st.SequenceMode = settings.PlacePrefix
	items, err := p.PlanDirs([]string{"/root/b", "/root/a", "/root/b", "/"}, st)
	if err != nil {
		t.Fatal(err)
	}
	want := []RenameItem{
		{OldPath: "/root/b", NewPath: "/root/001_b"},
		{OldPath: "/root/a", NewPath: "/root/002_a"},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("PlanDirs = %+v, want %+v", items, want)
	}

	// Other methods see a constant counter and keep dots in directory names.
	st = settings.Default()
	st.Method = settings.MethodAddText
	st.TextPosition = settings.PlaceSuffix
	st.AddText = "_x"
	items, err = p.PlanDirs([]string{"/root/c.d"}, st)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].NewPath != "/root/c.d_x" {
		t.Errorf("PlanDirs add-text = %+v", items)
	}
}

func TestPlanDirsNestedDeepestFirst(t *testing.T) {
	fsys := memTree(t, "/root/a/b/c/f.txt", "/root/z/f.txt")
	p := newPlanner(fsys)

	st := settings.Default()
	st.Method = settings.MethodAddText
	st.TextPosition = settings.PlaceSuffix
	st.AddText = "_x"
	items, err := p.PlanDirs([]string{"/root/a", "/root/z", "/root/a/b/c", "/root/a/b"}, st)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/root/a/b/c", "/root/a/b", "/root/a", "/root/z"}
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.OldPath
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSelect(t *testing.T) {
	fsys := memTree(t, "/a/x.txt", "/a/y.txt", "/b/z.txt")
	p := newPlanner(fsys)

	rows, err := p.Candidates(ScopeFile, []string{"/b", "/a"}, true)
	if err != nil {
		t.Fatal(err)
	}
	st := settings.Default()
	st.Method = settings.MethodSequence

	items, err := p.Select(ScopeFile, rows, st)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := newPaths(items), []string{"/a/001.txt", "/a/002.txt", "/b/003.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("global sequence = %v, want %v", got, want)
	}

	st.SequencePerFolder = true
	items, err = p.Select(ScopeFile, rows, st)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := newPaths(items), []string{"/a/001.txt", "/a/002.txt", "/b/001.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("per-dir sequence = %v, want %v", got, want)
	}

	dirs, err := p.Candidates(ScopeFolder, []string{"/a/x.txt", "/a/y.txt", "/b"}, false)
	if err != nil {
		t.Fatal(err)
	}
	items, err = p.Select(ScopeFolder, dirs, st)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := newPaths(items), []string{"/001", "/002"}; !reflect.DeepEqual(got, want) {
		t.Errorf("folder scope = %v, want %v", got, want)
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	fsys := memTree(t, "/d/a_1.txt", "/d/a_2.txt", "/d/b.txt")
	p := newPlanner(fsys)
	st := settings.Default()
	st.Target = "_1"
	st.SecondActive = true
	st.TargetSecond = "_2"

	first, err := p.Plan([]string{"/d"}, st)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Plan([]string{"/d"}, st)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("plans differ:\n%+v\n%+v", first, second)
	}
}

func TestPlanInvalidSettings(t *testing.T) {
	p := newPlanner(afero.NewMemMapFs())
	st := settings.Default()
	st.Method = "shuffle"
	if _, err := p.Plan([]string{"/d"}, st); err == nil {
		t.Fatal("expected error")
	}
}

func TestPlanDropsOverlongNames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, strings.Repeat("a", 200)+".txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	st := settings.Default()
	st.Method = settings.MethodAddText
	st.TextPosition = settings.PlaceSuffix
	st.AddText = strings.Repeat("b", 100)
	items, err := New(afero.NewOsFs()).Plan([]string{src}, st)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Plan = %+v, want no items", items)
	}
}

func TestPlanDropsItemWithoutFreeVariant(t *testing.T) {
	dir := t.TempDir()
	base := strings.Repeat("a", 240)
	src := filepath.Join(dir, base+".txt")
	taken := filepath.Join(dir, base+"bbbbbb.txt")
	for _, f := range []string{src, taken} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	st := settings.Default()
	st.Method = settings.MethodAddText
	st.TextPosition = settings.PlaceSuffix
	st.AddText = "bbbbbb"
	items, err := New(afero.NewOsFs()).Plan([]string{src}, st)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Plan = %+v, want no items", items)
	}
}

func TestFreePath(t *testing.T) {
	busy := map[string]bool{"/d/a.txt": true, "/d/a[duplicate001].txt": true}
	got, err := FreePath("/d/a.txt", func(p string) (bool, error) { return busy[p], nil })
	if err != nil || got != "/d/a[duplicate002].txt" {
		t.Errorf("FreePath = %q, %v", got, err)
	}

	lookupErr := errors.New("stat failed")
	if _, err := FreePath("/d/a.txt", func(string) (bool, error) { return false, lookupErr }); !errors.Is(err, lookupErr) {
		t.Errorf("lookup error = %v", err)
	}

	calls := 0
	_, err = FreePath("/d/a.txt", func(string) (bool, error) {
		calls++
		return true, nil
	})
	if !errors.Is(err, ErrNoFreeName) {
		t.Errorf("always taken = %v", err)
	}
	if calls != maxDuplicates+1 {
		t.Errorf("taken called %d times", calls)
	}
}

func TestDuplicateName(t *testing.T) {
	if got := DuplicateName("a.tar.gz", 12); got != "a.tar[duplicate012].gz" {
		t.Errorf("got %q", got)
	}
	if got := DuplicateName(".env", 1); got != ".env[duplicate001]" {
		t.Errorf("got %q", got)
	}
}
