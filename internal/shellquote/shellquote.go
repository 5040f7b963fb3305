// Package shellquote renders command lines that can be pasted into a POSIX
// shell.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteIfNeeded quotes s when a shell would split or expand it. File names
// with spaces are the common case.
func QuoteIfNeeded(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n#[]()|!\"'$&;<>*?`\\~{}") {
		return Quote(s)
	}
	return s
}

// Join quotes each word as needed and joins them with spaces.
func Join(words ...string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = QuoteIfNeeded(w)
	}
	return strings.Join(out, " ")
}
