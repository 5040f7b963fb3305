package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aidanlsb/rnm/internal/collect"
	"github.com/aidanlsb/rnm/internal/config"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/presets"
	"github.com/aidanlsb/rnm/internal/settings"
)

// enumValue is a pflag.Value restricted to one of allowed, parsed with
// settings.Parse so aliases like "seq" or "_" work.
type enumValue[T ~string] struct {
	target  *T
	allowed []T
	kind    string
}

func newEnumValue[T ~string](target *T, allowed []T, kind string) *enumValue[T] {
	return &enumValue[T]{target: target, allowed: allowed, kind: kind}
}

func (v *enumValue[T]) String() string {
	if v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v *enumValue[T]) Set(raw string) error {
	parsed, err := settings.Parse(raw, v.allowed)
	if err != nil {
		return err
	}
	*v.target = parsed
	return nil
}

func (v *enumValue[T]) Type() string { return v.kind }

func enumUsage[T ~string](desc string, allowed []T) string {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return fmt.Sprintf("%s (%s)", desc, strings.Join(names, "|"))
}

// settingsFlags binds every rename option to a command's flags. Only flags
// the user actually set are laid over the base settings.
type settingsFlags struct {
	flags  *pflag.FlagSet
	values settings.Settings
	fields []boundField
	preset string
}

type boundField struct {
	name  string
	apply func(dst *settings.Settings)
}

func newSettingsFlags(fs *pflag.FlagSet) *settingsFlags {
	b := &settingsFlags{flags: fs, values: settings.Default()}
	fs.StringVar(&b.preset, "preset", "", "Start from a saved preset")

	bindEnum(b, "method", "m", enumUsage("Rename method", settings.Methods()), settings.Methods(), "method",
		func(s *settings.Settings) *settings.Method { return &s.Method })

	// Replace
	bindString(b, "find", "Text to replace", func(s *settings.Settings) *string { return &s.Target })
	bindString(b, "replace", "Replacement text", func(s *settings.Settings) *string { return &s.Replacement })
	bindString(b, "find2", "Second text to replace", func(s *settings.Settings) *string { return &s.TargetSecond })
	bindString(b, "replace2", "Second replacement text", func(s *settings.Settings) *string { return &s.ReplacementSecond })
	bindBool(b, "include-ext", "", "Let replacements see the extension", func(s *settings.Settings) *bool { return &s.IncludeExtension })

	// Delete between markers
	bindString(b, "start", "Start marker for delete-between", func(s *settings.Settings) *string { return &s.MarkerStart })
	bindString(b, "end", "End marker for delete-between", func(s *settings.Settings) *string { return &s.MarkerEnd })

	// Sequence
	bindInt(b, "digits", "Sequence width in digits", func(s *settings.Settings) *int { return &s.SequenceDigits })
	bindInt(b, "start-at", "First sequence number", func(s *settings.Settings) *int { return &s.SequenceStart })
	bindEnum(b, "seq-mode", "", enumUsage("Where the number goes", settings.Placements()), settings.Placements(), "placement",
		func(s *settings.Settings) *settings.Placement { return &s.SequenceMode })
	bindBool(b, "per-folder", "", "Restart numbering in every folder", func(s *settings.Settings) *bool { return &s.SequencePerFolder })

	// Date stamp
	bindEnum(b, "date-mode", "", enumUsage("Where the date goes", settings.Placements()), settings.Placements(), "placement",
		func(s *settings.Settings) *settings.Placement { return &s.DateMode })
	bindEnum(b, "date-type", "", enumUsage("Which timestamp to use", settings.DateTypes()), settings.DateTypes(), "date-type",
		func(s *settings.Settings) *settings.DateType { return &s.DateType })

	// Folder name
	affix := []settings.Placement{settings.PlacePrefix, settings.PlaceSuffix}
	bindEnum(b, "folder-pos", "", enumUsage("Where the folder name goes", affix), affix, "placement",
		func(s *settings.Settings) *settings.Placement { return &s.FolderPosition })
	bindBool(b, "with-parent", "", "Also add the grandparent folder name", func(s *settings.Settings) *bool { return &s.IncludeParentFolder })

	// Add text
	bindString(b, "text", "Text to add", func(s *settings.Settings) *string { return &s.AddText })
	bindEnum(b, "text-pos", "", enumUsage("Where the text goes", affix), affix, "placement",
		func(s *settings.Settings) *settings.Placement { return &s.TextPosition })

	// Collection
	bindBool(b, "recursive", "r", "Include files in subfolders", func(s *settings.Settings) *bool { return &s.IncludeSubfolders })

	// Move or insert token
	bindString(b, "token-find", "Token to look for", func(s *settings.Settings) *string { return &s.MoveFind })
	bindString(b, "token-text", "Fixed text to insert instead of the match", func(s *settings.Settings) *string { return &s.MoveCustom })
	bindEnum(b, "token-action", "", enumUsage("Delete the match or keep it", settings.MoveActions()), settings.MoveActions(), "action",
		func(s *settings.Settings) *settings.MoveAction { return &s.MoveAction })
	bindEnum(b, "token-pos", "", enumUsage("Where the token goes", settings.MovePositions()), settings.MovePositions(), "position",
		func(s *settings.Settings) *settings.MovePosition { return &s.MovePosition })
	bindBool(b, "delete-all", "", "Delete every occurrence of the match", func(s *settings.Settings) *bool { return &s.MoveDeleteAll })
	bindEnum(b, "sep", "", enumUsage("Separator next to the token", settings.Separators()), settings.Separators(), "separator",
		func(s *settings.Settings) *settings.Separator { return &s.MoveSeparator })
	bindBool(b, "regex", "", "Treat --token-find as a regular expression", func(s *settings.Settings) *bool { return &s.MoveRegex })
	bindString(b, "anchor", "Insert the token after this text", func(s *settings.Settings) *string { return &s.MoveAnchor })
	bindBool(b, "anchor-regex", "", "Treat --anchor as a regular expression", func(s *settings.Settings) *bool { return &s.MoveAnchorRegex })

	return b
}

func bindString(b *settingsFlags, name, usage string, field func(*settings.Settings) *string) {
	b.flags.StringVar(field(&b.values), name, *field(&b.values), usage)
	b.track(name, func(dst *settings.Settings) { *field(dst) = *field(&b.values) })
}

func bindBool(b *settingsFlags, name, short, usage string, field func(*settings.Settings) *bool) {
	b.flags.BoolVarP(field(&b.values), name, short, *field(&b.values), usage)
	b.track(name, func(dst *settings.Settings) { *field(dst) = *field(&b.values) })
}

func bindInt(b *settingsFlags, name, usage string, field func(*settings.Settings) *int) {
	b.flags.IntVar(field(&b.values), name, *field(&b.values), usage)
	b.track(name, func(dst *settings.Settings) { *field(dst) = *field(&b.values) })
}

func bindEnum[T ~string](b *settingsFlags, name, short, usage string, allowed []T, kind string, field func(*settings.Settings) *T) {
	b.flags.VarP(newEnumValue(field(&b.values), allowed, kind), name, short, usage)
	b.track(name, func(dst *settings.Settings) { *field(dst) = *field(&b.values) })
}

func (b *settingsFlags) track(name string, apply func(dst *settings.Settings)) {
	b.fields = append(b.fields, boundField{name: name, apply: apply})
}

// overlay copies the flags that were set onto st.
func (b *settingsFlags) overlay(st *settings.Settings) {
	for _, f := range b.fields {
		if b.flags.Changed(f.name) {
			f.apply(st)
		}
	}
	if b.flags.Changed("find2") || b.flags.Changed("replace2") {
		st.SecondActive = true
	}
	if b.flags.Changed("token-text") {
		st.MoveUseFind = st.MoveCustom == ""
	}
}

// resolve builds the effective settings: defaults, then the remembered
// state, then --preset, then explicit flags.
func (b *settingsFlags) resolve() (settings.Settings, error) {
	st := settings.Default()
	if getConfig().Remember() {
		state, err := config.LoadState(fsys, paths.State)
		if err != nil {
			logDebug("ignoring state: %v", err)
		} else {
			st = state.Settings
		}
	}
	if b.preset != "" {
		p, err := presets.NewStore(fsys, paths.Presets).Load(b.preset)
		if err != nil {
			return settings.Settings{}, err
		}
		st = p.Settings
	}
	b.overlay(&st)

	st = st.Normalize()
	if err := st.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return st, nil
}

// scopeFlags holds --scope and --order.
type scopeFlags struct {
	flags *pflag.FlagSet
	scope plan.Scope
	order collect.Order
}

func newScopeFlags(fs *pflag.FlagSet) *scopeFlags {
	s := &scopeFlags{flags: fs, scope: plan.ScopeFile, order: collect.OrderNatural}
	fs.Var(newEnumValue(&s.scope, plan.Scopes(), "scope"), "scope", enumUsage("Rename files or the folders holding them", plan.Scopes()))
	fs.Var(newEnumValue(&s.order, collect.Orders(), "order"), "order", enumUsage("Order used for numbering", collect.Orders()))
	return s
}

// resolveScope applies config default_scope, then the remembered scope,
// then --scope.
func (s *scopeFlags) resolveScope() (plan.Scope, error) {
	if s.flags.Changed("scope") {
		return s.scope, nil
	}
	scope := getConfig().Scope()
	if getConfig().Remember() {
		if state, err := config.LoadState(fsys, paths.State); err == nil && state.Scope != "" {
			scope = state.Scope
		}
	}
	return settings.Parse(scope, plan.Scopes())
}

// rememberSettings stores st and scope as the state for the next run.
func rememberSettings(st settings.Settings, scope plan.Scope) *Warning {
	if !getConfig().Remember() {
		return nil
	}
	state, err := config.LoadState(fsys, paths.State)
	if err != nil {
		state = config.DefaultState()
	}
	state.Settings = st
	state.Scope = string(scope)
	if err := config.SaveState(fsys, paths.State, state); err != nil {
		logDebug("state not saved: %v", err)
		w := newWarning(WarnStateNotSaved, err, paths.State)
		return &w
	}
	return nil
}
