package ui

import "testing"

func TestTableAlignsWideCharacters(t *testing.T) {
	tbl := NewTable(2)
	tbl.AddRow("天気", "a")
	tbl.AddRow("abcde", "b")

	want := "天気   a\nabcde  b\n"
	if got := tbl.String(); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}

func TestTableEmpty(t *testing.T) {
	if got := NewTable(3).String(); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
