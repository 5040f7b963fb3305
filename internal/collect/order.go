package collect

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Order names a caller-side ordering of candidate paths.
type Order string

const (
	OrderSorted  Order = "sorted"  // byte-wise path order
	OrderNatural Order = "natural" // natural order on base names
	OrderGiven   Order = "given"   // exactly as supplied
)

// Orders lists the valid orderings.
func Orders() []Order {
	return []Order{OrderSorted, OrderNatural, OrderGiven}
}

// Arrange returns a copy of paths in the requested order.
func Arrange(paths []string, order Order) []string {
	out := append([]string(nil), paths...)
	switch order {
	case OrderNatural:
		SortNatural(out)
	case OrderSorted:
		sort.Strings(out)
	}
	return out
}

// SortNatural sorts paths by base name so that "file2" precedes "file10".
// Ties fall back to the full path.
func SortNatural(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return NaturalLess(paths[i], paths[j])
	})
}

// NaturalLess compares the base names of a and b case-insensitively, treating
// runs of digits as numbers.
func NaturalLess(a, b string) bool {
	ba, bb := filepath.Base(a), filepath.Base(b)
	if c := naturalCompare(ba, bb); c != 0 {
		return c < 0
	}
	return a < b
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ra, sizeA := utf8.DecodeRuneInString(a)
		rb, sizeB := utf8.DecodeRuneInString(b)

		if isDigit(ra) && isDigit(rb) {
			da, restA := digitRun(a)
			db, restB := digitRun(b)
			na := strings.TrimLeft(da, "0")
			nb := strings.TrimLeft(db, "0")
			if len(na) != len(nb) {
				return compareInt(len(na), len(nb))
			}
			if na != nb {
				return strings.Compare(na, nb)
			}
			if len(da) != len(db) {
				return compareInt(len(da), len(db))
			}
			a, b = restA, restB
			continue
		}

		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			return compareInt(int(la), int(lb))
		}
		a, b = a[sizeA:], b[sizeB:]
	}
	return compareInt(len(a), len(b))
}

func digitRun(s string) (run, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
