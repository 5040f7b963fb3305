// Package slugs turns user-facing names into stable identifiers.
//
// Two strategies are used:
//   - Heading slugs identify sections of the embedded method reference.
//   - Name slugs become preset file names and are built on gosimple/slug.
package slugs

import (
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

// HeadingSlug converts heading text to a lowercase, dash-separated key.
// Letters of any script are kept.
func HeadingSlug(text string) string {
	var result strings.Builder
	prevDash := false

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '-' || r == '_' || r == ':' || r == '/':
			if !prevDash && result.Len() > 0 {
				result.WriteRune('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(result.String(), "-")
}

// NameSlug converts a preset name to a file-name-safe slug. Names that
// transliterate to nothing fall back to HeadingSlug so non-Latin names still
// get a usable key.
func NameSlug(name string) string {
	name = strings.TrimSpace(name)
	if s := goslug.Make(name); s != "" {
		return s
	}
	return HeadingSlug(name)
}
