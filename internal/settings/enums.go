package settings

import (
	"fmt"
	"strings"
)

// Methods lists every rename method in display order.
func Methods() []Method {
	return []Method{
		MethodReplace,
		MethodDeleteBetween,
		MethodSequence,
		MethodDate,
		MethodFolderName,
		MethodAddText,
		MethodMoveToken,
	}
}

// Placements lists the valid placements for generated fragments.
func Placements() []Placement {
	return []Placement{PlaceFull, PlacePrefix, PlaceSuffix}
}

// DateTypes lists the valid timestamp sources.
func DateTypes() []DateType {
	return []DateType{DateCreated, DateModified}
}

// MoveActions lists the valid token actions.
func MoveActions() []MoveAction {
	return []MoveAction{MoveDelete, MoveKeep}
}

// MovePositions lists the valid token insert positions.
func MovePositions() []MovePosition {
	return []MovePosition{MoveToStart, MoveToEnd, MoveAfterAnchor}
}

// Separators lists the valid token separators.
func Separators() []Separator {
	return []Separator{SepNone, SepSpace, SepUnderscore, SepHyphen}
}

// aliases maps alternate spellings accepted on the command line.
var aliases = map[string]string{
	"rename":       string(MethodReplace),
	"delete":       string(MethodDeleteBetween),
	"between":      string(MethodDeleteBetween),
	"seq":          string(MethodSequence),
	"number":       string(MethodSequence),
	"stamp":        string(MethodDate),
	"folder":       string(MethodFolderName),
	"text":         string(MethodAddText),
	"move":         string(MethodMoveToken),
	"token":        string(MethodMoveToken),
	"before":       string(PlacePrefix),
	"after":        string(PlaceSuffix),
	"updated":      string(DateModified),
	"mtime":        string(DateModified),
	"ctime":        string(DateCreated),
	"head":         string(MoveToStart),
	"tail":         string(MoveToEnd),
	"anchor":       string(MoveAfterAnchor),
	"after-anchor": string(MoveAfterAnchor),
	"keep":         string(MoveKeep),
	"add":          string(MoveKeep),
	"_":            string(SepUnderscore),
	"-":            string(SepHyphen),
	" ":            string(SepSpace),
	"":             string(SepNone),
}

// Parse resolves raw (case-insensitive, aliases allowed) to one of allowed.
// A direct match wins over an alias.
func Parse[T ~string](raw string, allowed []T) (T, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" && raw != "" {
		key = " "
	}
	for _, a := range allowed {
		if string(a) == key {
			return a, nil
		}
	}
	if alias, ok := aliases[key]; ok {
		for _, a := range allowed {
			if string(a) == alias {
				return a, nil
			}
		}
	}

	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	var zero T
	return zero, fmt.Errorf("%w: %q is not one of %s", ErrInvalid, raw, strings.Join(names, ", "))
}
