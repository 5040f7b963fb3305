package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/settings"
)

func mustNew(t *testing.T, st settings.Settings, fsys afero.Fs) *Transformer {
	t.Helper()
	if fsys == nil {
		fsys = afero.NewMemMapFs()
	}
	tr, err := New(st, fsys)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestFile(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		counter int
		mutate  func(*settings.Settings)
		want    string // "" means unchanged
	}{
		{
			name: "replace name only",
			path: "/d/foo_bar.txt",
			mutate: func(s *settings.Settings) {
				s.Target, s.Replacement = "bar", "baz"
			},
			want: "/d/foo_baz.txt",
		},
		{
			name: "replace ignores extension by default",
			path: "/d/foo_bar.txt",
			mutate: func(s *settings.Settings) {
				s.Target, s.Replacement = ".txt", ".md"
			},
		},
		{
			name: "replace with extension",
			path: "/d/foo_bar.txt",
			mutate: func(s *settings.Settings) {
				s.Target, s.Replacement = ".txt", ".md"
				s.IncludeExtension = true
			},
			want: "/d/foo_bar.md",
		},
		{
			name: "replace all occurrences and second pass",
			path: "/d/a-a-b.txt",
			mutate: func(s *settings.Settings) {
				s.Target, s.Replacement = "a", "x"
				s.SecondActive = true
				s.TargetSecond, s.ReplacementSecond = "b", "y"
			},
			want: "/d/x-x-y.txt",
		},
		{
			name: "second pass ignored when inactive",
			path: "/d/a-b.txt",
			mutate: func(s *settings.Settings) {
				s.TargetSecond, s.ReplacementSecond = "b", "y"
			},
		},
		{
			name: "no target is unchanged",
			path: "/d/a.txt",
		},
		{
			name: "replace producing a separator is unchanged",
			path: "/d/a_b.txt",
			mutate: func(s *settings.Settings) {
				s.Target, s.Replacement = "_", "/"
			},
		},
		{
			name: "delete between markers",
			path: "/d/report (draft) v2.txt",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodDeleteBetween
				s.MarkerStart, s.MarkerEnd = " (", ")"
			},
			want: "/d/report v2.txt",
		},
		{
			name: "end marker searched after start",
			path: "/d/x]a[b]c.txt",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodDeleteBetween
				s.MarkerStart, s.MarkerEnd = "[", "]"
			},
			want: "/d/x]ac.txt",
		},
		{
			name: "missing end marker",
			path: "/d/a[b.txt",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodDeleteBetween
				s.MarkerStart, s.MarkerEnd = "[", "]"
			},
		},
		{
			name:    "sequence full",
			path:    "/d/x.txt",
			counter: 7,
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodSequence
			},
			want: "/d/007.txt",
		},
		{
			name:    "sequence prefix",
			path:    "/d/x.txt",
			counter: 12,
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodSequence
				s.SequenceMode = settings.PlacePrefix
				s.SequenceDigits = 2
			},
			want: "/d/12_x.txt",
		},
		{
			name:    "sequence suffix wider than digits",
			path:    "/d/x.txt",
			counter: 1234,
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodSequence
				s.SequenceMode = settings.PlaceSuffix
			},
			want: "/d/x_1234.txt",
		},
		{
			name: "add text prefix",
			path: "/d/x.txt",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodAddText
				s.AddText = "new-"
			},
			want: "/d/new-x.txt",
		},
		{
			name: "add text suffix",
			path: "/d/x.txt",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodAddText
				s.TextPosition = settings.PlaceSuffix
				s.AddText = "-old"
			},
			want: "/d/x-old.txt",
		},
		{
			name: "folder name prefix",
			path: "/photos/trip/img.jpg",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodFolderName
			},
			want: "/photos/trip/trip_img.jpg",
		},
		{
			name: "folder name suffix with parent",
			path: "/photos/trip/img.jpg",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodFolderName
				s.FolderPosition = settings.PlaceSuffix
				s.IncludeParentFolder = true
			},
			want: "/photos/trip/img_photos_trip.jpg",
		},
		{
			name: "dotfile keeps its name as base",
			path: "/d/.env",
			mutate: func(s *settings.Settings) {
				s.Method = settings.MethodAddText
				s.TextPosition = settings.PlaceSuffix
				s.AddText = ".bak"
			},
			want: "/d/.env.bak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := settings.Default()
			if tt.mutate != nil {
				tt.mutate(&st)
			}
			got := mustNew(t, st, nil).File(tt.path, tt.counter)
			if tt.want == "" {
				if got.IsChanged() {
					t.Fatalf("expected unchanged, got %s", got)
				}
				return
			}
			if got.Path() != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMoveToken(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		mutate func(*settings.Settings)
		want   string
		skip   bool
	}{
		{
			name: "move literal to start with space",
			base: "20250505 天気 晴れ",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "天気"
				s.MoveSeparator = settings.SepSpace
			},
			want: "天気 20250505 晴れ",
		},
		{
			name: "move regex match to end",
			base: "IMG_2024_holiday",
			mutate: func(s *settings.Settings) {
				s.MoveFind = `\d{4}`
				s.MoveRegex = true
				s.MovePosition = settings.MoveToEnd
				s.MoveSeparator = settings.SepUnderscore
			},
			want: "IMG_holiday_2024",
		},
		{
			name: "missing term skips",
			base: "abc",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "zzz"
			},
			skip: true,
		},
		{
			name: "delete only first occurrence",
			base: "x-a-x",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "x"
				s.MovePosition = settings.MoveToEnd
			},
			want: "-a-xx",
		},
		{
			name: "delete every occurrence",
			base: "x-a-x",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "x"
				s.MoveDeleteAll = true
				s.MovePosition = settings.MoveToEnd
			},
			want: "-a-x",
		},
		{
			name: "copy keeps original",
			base: "song_live",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "live"
				s.MoveAction = settings.MoveKeep
				s.MoveSeparator = settings.SepHyphen
			},
			want: "live-song_live",
		},
		{
			name: "custom token requires search term to match",
			base: "draft notes",
			mutate: func(s *settings.Settings) {
				s.MoveUseFind = false
				s.MoveCustom = "FINAL"
				s.MoveFind = "published"
				s.MoveAction = settings.MoveKeep
			},
			skip: true,
		},
		{
			name: "custom token without search term",
			base: "notes",
			mutate: func(s *settings.Settings) {
				s.MoveUseFind = false
				s.MoveCustom = "FINAL"
				s.MoveAction = settings.MoveKeep
				s.MovePosition = settings.MoveToEnd
				s.MoveSeparator = settings.SepUnderscore
			},
			want: "notes_FINAL",
		},
		{
			name: "insert after literal anchor",
			base: "2025 report",
			mutate: func(s *settings.Settings) {
				s.MoveUseFind = false
				s.MoveCustom = "Q1"
				s.MoveAction = settings.MoveKeep
				s.MovePosition = settings.MoveAfterAnchor
				s.MoveAnchor = "2025"
				s.MoveSeparator = settings.SepSpace
			},
			want: "2025 Q1 report",
		},
		{
			name: "move after regex anchor deletes first",
			base: "final A001 scene",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "final"
				s.MovePosition = settings.MoveAfterAnchor
				s.MoveAnchor = `[A-Z]\d+`
				s.MoveAnchorRegex = true
				s.MoveSeparator = settings.SepUnderscore
			},
			want: "A001_final scene",
		},
		{
			name: "absent anchor skips",
			base: "abc",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "b"
				s.MovePosition = settings.MoveAfterAnchor
				s.MoveAnchor = "zzz"
			},
			skip: true,
		},
		{
			name: "separator omitted when name becomes empty",
			base: "token",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "token"
				s.MoveSeparator = settings.SepHyphen
			},
			skip: true, // result equals the input
		},
		{
			name: "cleanup collapses runs and trims",
			base: "__a   b__c_",
			mutate: func(s *settings.Settings) {
				s.MoveFind = "c"
				s.MovePosition = settings.MoveToEnd
			},
			want: "a b_c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := settings.Default()
			st.Method = settings.MethodMoveToken
			tt.mutate(&st)
			got := mustNew(t, st, nil).Name("/d/"+tt.base+".jpg", tt.base, ".jpg", 1)
			if tt.skip {
				if got.IsChanged() {
					t.Fatalf("expected unchanged, got %s", got)
				}
				return
			}
			if want := "/d/" + tt.want + ".jpg"; got.Path() != want {
				t.Fatalf("got %s, want %s", got, want)
			}
		})
	}
}

func TestDateStamp(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/d/photo.jpg", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2024, 3, 5, 6, 7, 8, 0, time.Local)
	if err := fsys.Chtimes("/d/photo.jpg", mtime, mtime); err != nil {
		t.Fatal(err)
	}

	st := settings.Default()
	st.Method = settings.MethodDate
	st.DateType = settings.DateModified
	got := mustNew(t, st, fsys).File("/d/photo.jpg", 1)
	if want := "/d/photo_[DateUpdated]2024_03_05-06_07_08.jpg"; got.Path() != want {
		t.Errorf("modified suffix = %s, want %s", got, want)
	}

	// Entries without a platform birth time fall back to the modification time.
	st.DateType = settings.DateCreated
	st.DateMode = settings.PlaceFull
	got = mustNew(t, st, fsys).File("/d/photo.jpg", 1)
	if want := "/d/[DateCreated]2024_03_05-06_07_08.jpg"; got.Path() != want {
		t.Errorf("created full = %s, want %s", got, want)
	}

	if got := mustNew(t, st, fsys).File("/d/missing.jpg", 1); got.IsChanged() {
		t.Errorf("missing file should be unchanged, got %s", got)
	}
}

func TestDir(t *testing.T) {
	st := settings.Default()
	st.Method = settings.MethodSequence
	st.SequenceMode = settings.PlacePrefix
	got := mustNew(t, st, nil).Dir("/root/album.2024", 3)
	if want := "/root/003_album.2024"; got.Path() != want {
		t.Errorf("Dir = %s, want %s", got, want)
	}
}

func TestNewRejectsBadRegex(t *testing.T) {
	st := settings.Default()
	st.Method = settings.MethodMoveToken
	st.MoveRegex = true
	st.MoveFind = "(["
	if _, err := New(st, afero.NewMemMapFs()); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestNewIgnoresMovePatternsForOtherMethods(t *testing.T) {
	st := settings.Default()
	st.Method = settings.MethodReplace
	st.Target = "a"
	st.Replacement = "b"
	st.MoveRegex = true
	st.MoveFind = "("
	st.MoveAnchorRegex = true
	st.MoveAnchor = "["
	tr, err := New(st, afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tr.File("/d/a.txt", 1); !got.IsChanged() || got.Path() != "/d/b.txt" {
		t.Errorf("File = %+v", got)
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.txt", true},
		{strings.Repeat("a", MaxNameBytes), true},
		{strings.Repeat("a", MaxNameBytes+1), false},
		{"", false},
		{"..", false},
		{"a/b", false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%.20q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct{ in, base, ext string }{
		{"a.txt", "a", ".txt"},
		{"a.tar.gz", "a.tar", ".gz"},
		{".bashrc", ".bashrc", ""},
		{"..x", "..x", ""},
		{"..x.y", "..x", ".y"},
		{"noext", "noext", ""},
		{"trailing.", "trailing", "."},
	}
	for _, tt := range tests {
		base, ext := SplitExt(tt.in)
		if base != tt.base || ext != tt.ext {
			t.Errorf("SplitExt(%q) = %q, %q; want %q, %q", tt.in, base, ext, tt.base, tt.ext)
		}
	}
}
