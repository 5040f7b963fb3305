package transform

import (
	"regexp"
	"strings"

	"github.com/aidanlsb/rnm/internal/settings"
)

var (
	repeatedSpaces      = regexp.MustCompile(` {2,}`)
	repeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// moveToken implements the move-or-insert-token method. It reports false when
// a required search term or anchor is absent.
func (t *Transformer) moveToken(base string) (string, bool) {
	st := t.st
	sep := st.MoveSeparator.Text()

	var token string
	if st.MoveUseFind {
		matched, ok := t.matchFind(base)
		if !ok {
			return "", false
		}
		token = matched
	} else {
		token = st.MoveCustom
		if token == "" {
			return "", false
		}
		// A search term still has to match even when it is not inserted.
		if st.MoveFind != "" {
			if _, ok := t.matchFind(base); !ok {
				return "", false
			}
		}
	}

	var out string
	switch st.MovePosition {
	case settings.MoveAfterAnchor:
		if st.MoveAnchor == "" {
			return "", false
		}
		if st.MoveAction == settings.MoveDelete && st.MoveFind != "" {
			base = t.deleteFind(base)
		}
		idx, ok := t.anchorEnd(base)
		if !ok {
			return "", false
		}
		left, right := base[:idx], base[idx:]
		if left == "" || token == "" {
			sep = ""
		}
		out = left + sep + token + right

	default:
		if st.MoveAction == settings.MoveDelete {
			if st.MoveFind == "" {
				return "", false
			}
			if _, ok := t.matchFind(base); !ok {
				return "", false
			}
			base = t.deleteFind(base)
		}
		if base == "" || token == "" {
			sep = ""
		}
		if st.MovePosition == settings.MoveToStart {
			out = token + sep + base
		} else {
			out = base + sep + token
		}
	}
	return cleanSeparators(out), true
}

// matchFind returns the text matched by the search term in s.
func (t *Transformer) matchFind(s string) (string, bool) {
	find := t.st.MoveFind
	if find == "" {
		return "", false
	}
	if t.find != nil {
		loc := t.find.FindStringIndex(s)
		if loc == nil {
			return "", false
		}
		return s[loc[0]:loc[1]], true
	}
	if !strings.Contains(s, find) {
		return "", false
	}
	return find, true
}

// deleteFind removes the first, or every, occurrence of the search term.
func (t *Transformer) deleteFind(s string) string {
	find := t.st.MoveFind
	if t.find != nil {
		if t.st.MoveDeleteAll {
			return t.find.ReplaceAllLiteralString(s, "")
		}
		loc := t.find.FindStringIndex(s)
		if loc == nil {
			return s
		}
		return s[:loc[0]] + s[loc[1]:]
	}
	n := 1
	if t.st.MoveDeleteAll {
		n = -1
	}
	return strings.Replace(s, find, "", n)
}

// anchorEnd returns the byte offset just past the first anchor match.
func (t *Transformer) anchorEnd(s string) (int, bool) {
	if t.anchor != nil {
		loc := t.anchor.FindStringIndex(s)
		if loc == nil {
			return 0, false
		}
		return loc[1], true
	}
	i := strings.Index(s, t.st.MoveAnchor)
	if i < 0 {
		return 0, false
	}
	return i + len(t.st.MoveAnchor), true
}

// cleanSeparators collapses runs of spaces and underscores and trims both
// from the ends.
func cleanSeparators(s string) string {
	s = repeatedSpaces.ReplaceAllString(s, " ")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, " _")
}
