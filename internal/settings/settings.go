// Package settings defines the immutable configuration snapshot that selects
// a rename method and its options.
package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid settings")

// Method selects the name transformation.
type Method string

const (
	MethodReplace       Method = "replace"
	MethodDeleteBetween Method = "delete-between"
	MethodSequence      Method = "sequence"
	MethodDate          Method = "date"
	MethodFolderName    Method = "folder-name"
	MethodAddText       Method = "add-text"
	MethodMoveToken     Method = "move-token"
)

// Placement controls where a generated fragment goes relative to the name.
type Placement string

const (
	PlaceFull   Placement = "full"
	PlacePrefix Placement = "prefix"
	PlaceSuffix Placement = "suffix"
)

// DateType selects which file timestamp a date stamp uses.
type DateType string

const (
	DateCreated  DateType = "created"
	DateModified DateType = "modified"
)

// MoveAction selects whether the matched token is removed from its original
// location before being inserted.
type MoveAction string

const (
	MoveDelete MoveAction = "move" // delete original occurrence and move
	MoveKeep   MoveAction = "copy" // keep original, also add
)

// MovePosition selects where the token is inserted.
type MovePosition string

const (
	MoveToStart     MovePosition = "start"
	MoveToEnd       MovePosition = "end"
	MoveAfterAnchor MovePosition = "after"
)

// Separator is the optional single character placed before an inserted token.
type Separator string

const (
	SepNone       Separator = "none"
	SepSpace      Separator = "space"
	SepUnderscore Separator = "underscore"
	SepHyphen     Separator = "hyphen"
)

// Text returns the literal separator text.
func (s Separator) Text() string {
	switch s {
	case SepSpace:
		return " "
	case SepUnderscore:
		return "_"
	case SepHyphen:
		return "-"
	}
	return ""
}

// Settings is a flat snapshot of every rename option. It is passed by value
// and never mutated during a plan/execute cycle.
type Settings struct {
	Method Method `json:"method" yaml:"method"`

	// Replace
	Target            string `json:"target" yaml:"target,omitempty"`
	Replacement       string `json:"replacement" yaml:"replacement,omitempty"`
	SecondActive      bool   `json:"rename_second_active" yaml:"rename_second_active,omitempty"`
	TargetSecond      string `json:"target_second" yaml:"target_second,omitempty"`
	ReplacementSecond string `json:"replacement_second" yaml:"replacement_second,omitempty"`
	IncludeExtension  bool   `json:"include_extension" yaml:"include_extension,omitempty"`

	// Delete between markers
	MarkerStart string `json:"surrounded_start" yaml:"surrounded_start,omitempty"`
	MarkerEnd   string `json:"surrounded_end" yaml:"surrounded_end,omitempty"`

	// Sequence
	SequenceDigits    int       `json:"sequence_digits" yaml:"sequence_digits"`
	SequenceMode      Placement `json:"sequence_mode" yaml:"sequence_mode"`
	SequenceStart     int       `json:"sequence_start" yaml:"sequence_start"`
	SequencePerFolder bool      `json:"sequence_per_folder" yaml:"sequence_per_folder,omitempty"`

	// Date stamp
	DateMode Placement `json:"date_mode" yaml:"date_mode"`
	DateType DateType  `json:"date_type" yaml:"date_type"`

	// Folder name
	FolderPosition      Placement `json:"folder_name_position" yaml:"folder_name_position"`
	IncludeParentFolder bool      `json:"include_parent_folder" yaml:"include_parent_folder,omitempty"`

	// Add text
	TextPosition Placement `json:"text_position" yaml:"text_position"`
	AddText      string    `json:"add_text" yaml:"add_text,omitempty"`

	// Collection
	IncludeSubfolders bool `json:"include_subfolders" yaml:"include_subfolders"`

	// Move or insert token
	MoveFind        string       `json:"move_find" yaml:"move_find,omitempty"`
	MoveAction      MoveAction   `json:"move_action" yaml:"move_action"`
	MovePosition    MovePosition `json:"move_pos" yaml:"move_pos"`
	MoveUseFind     bool         `json:"move_use_find" yaml:"move_use_find"`
	MoveCustom      string       `json:"move_custom" yaml:"move_custom,omitempty"`
	MoveDeleteAll   bool         `json:"move_delete_all" yaml:"move_delete_all,omitempty"`
	MoveSeparator   Separator    `json:"move_sep_mode" yaml:"move_sep_mode"`
	MoveRegex       bool         `json:"move_regex" yaml:"move_regex,omitempty"`
	MoveAnchor      string       `json:"move_anchor" yaml:"move_anchor,omitempty"`
	MoveAnchorRegex bool         `json:"move_anchor_regex" yaml:"move_anchor_regex,omitempty"`
}

// Default returns the settings used when nothing has been saved yet.
func Default() Settings {
	return Settings{
		Method:            MethodReplace,
		SequenceDigits:    3,
		SequenceMode:      PlaceFull,
		SequenceStart:     1,
		DateMode:          PlaceSuffix,
		DateType:          DateCreated,
		FolderPosition:    PlacePrefix,
		TextPosition:      PlacePrefix,
		IncludeSubfolders: true,
		MoveAction:        MoveDelete,
		MovePosition:      MoveToStart,
		MoveUseFind:       true,
		MoveSeparator:     SepNone,
	}
}

// Normalize fills empty enum fields with their defaults and clamps the
// sequence digit width and start value to at least 1.
func (s Settings) Normalize() Settings {
	d := Default()
	if s.Method == "" {
		s.Method = d.Method
	}
	if s.SequenceMode == "" {
		s.SequenceMode = d.SequenceMode
	}
	if s.DateMode == "" {
		s.DateMode = d.DateMode
	}
	if s.DateType == "" {
		s.DateType = d.DateType
	}
	if s.FolderPosition == "" {
		s.FolderPosition = d.FolderPosition
	}
	if s.TextPosition == "" {
		s.TextPosition = d.TextPosition
	}
	if s.MoveAction == "" {
		s.MoveAction = d.MoveAction
	}
	if s.MovePosition == "" {
		s.MovePosition = d.MovePosition
	}
	if s.MoveSeparator == "" {
		s.MoveSeparator = d.MoveSeparator
	}
	if s.SequenceDigits < 1 {
		s.SequenceDigits = 1
	}
	if s.SequenceStart < 1 {
		s.SequenceStart = 1
	}
	return s
}

// Validate reports the first problem found in s. Regular expressions are only
// compiled when the move-token method would use them.
func (s Settings) Validate() error {
	if !oneOf(s.Method, Methods()) {
		return invalid("method", string(s.Method), Methods())
	}
	if !oneOf(s.SequenceMode, Placements()) {
		return invalid("sequence mode", string(s.SequenceMode), Placements())
	}
	if !oneOf(s.DateMode, Placements()) {
		return invalid("date mode", string(s.DateMode), Placements())
	}
	affix := []Placement{PlacePrefix, PlaceSuffix}
	if !oneOf(s.FolderPosition, affix) {
		return invalid("folder name position", string(s.FolderPosition), affix)
	}
	if !oneOf(s.TextPosition, affix) {
		return invalid("text position", string(s.TextPosition), affix)
	}
	if !oneOf(s.DateType, DateTypes()) {
		return invalid("date type", string(s.DateType), DateTypes())
	}
	if !oneOf(s.MoveAction, MoveActions()) {
		return invalid("move action", string(s.MoveAction), MoveActions())
	}
	if !oneOf(s.MovePosition, MovePositions()) {
		return invalid("move position", string(s.MovePosition), MovePositions())
	}
	if !oneOf(s.MoveSeparator, Separators()) {
		return invalid("separator", string(s.MoveSeparator), Separators())
	}
	if s.SequenceDigits < 1 {
		return fmt.Errorf("%w: sequence digits must be at least 1 (got %d)", ErrInvalid, s.SequenceDigits)
	}
	if s.SequenceStart < 1 {
		return fmt.Errorf("%w: sequence start must be at least 1 (got %d)", ErrInvalid, s.SequenceStart)
	}

	if s.Method == MethodMoveToken {
		if s.MoveRegex && s.MoveFind != "" {
			if _, err := regexp.Compile(s.MoveFind); err != nil {
				return fmt.Errorf("%w: search pattern %q: %v", ErrInvalid, s.MoveFind, err)
			}
		}
		if s.MoveAnchorRegex && s.MoveAnchor != "" {
			if _, err := regexp.Compile(s.MoveAnchor); err != nil {
				return fmt.Errorf("%w: anchor pattern %q: %v", ErrInvalid, s.MoveAnchor, err)
			}
		}
	}
	return nil
}

func invalid[T ~string](field, got string, allowed []T) error {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return fmt.Errorf("%w: unknown %s %q (use %s)", ErrInvalid, field, got, strings.Join(names, ", "))
}

func oneOf[T comparable](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
