package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/internal/lastplan"
	"github.com/aidanlsb/rnm/internal/presets"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/ui"
)

var (
	previewSettings *settingsFlags
	previewScope    *scopeFlags
)

var previewCmd = &cobra.Command{
	Use:   "preview [paths...]",
	Short: "Show what a rename would do",
	Long: `Compute the new names for the given files or folders without touching them.

Paths default to the current directory. Directories expand to the files in
them (--recursive includes subfolders); with --scope folder the directories
themselves are renamed.

The plan is stored so that 'rnm apply --last' executes exactly what was shown.

Examples:
  rnm preview --method replace --find IMG_ --replace trip_ ~/Pictures/trip
  rnm preview -m sequence --digits 4 --seq-mode prefix --order natural .
  rnm preview -m move-token --token-find 2025 --token-pos end --sep space *.pdf
  rnm preview --preset photos ~/Downloads`,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	start := time.Now()

	st, err := previewSettings.resolve()
	if err != nil {
		return settingsError(err)
	}
	scope, err := previewScope.resolveScope()
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	data, err := computePlan(scope, previewScope.order, args, st)
	if err != nil {
		return handleError(ErrPlanFailed, err, "")
	}

	var warnings []Warning
	err = lastplan.Write(fsys, paths.LastPlan, &lastplan.LastPlan{
		Scope:    scope,
		Order:    previewScope.order,
		Inputs:   data.Inputs,
		Settings: st,
		Items:    data.Items,
	})
	if err != nil {
		warnings = append(warnings, newWarning(WarnStateNotSaved, err, paths.LastPlan))
	}
	if w := rememberSettings(st, scope); w != nil {
		warnings = append(warnings, *w)
	}
	if len(data.Items) == 0 {
		warnings = append(warnings, Warning{Code: WarnNothingToDo, Message: "no names change"})
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(data, warnings, &Meta{
			Count:     len(data.Items),
			ElapsedMs: time.Since(start).Milliseconds(),
		})
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Println(ui.Infof("Nothing to rename (%d %s checked)", data.Candidates, ui.Pluralize(data.Candidates, "item", "items")))
		return nil
	}
	printPlan(data.Items)
	fmt.Println()
	fmt.Printf("%d %s will be renamed, %d unchanged\n", len(data.Items), ui.Pluralize(len(data.Items), "item", "items"), data.Unchanged)
	printWarnings(warnings)
	fmt.Println(ui.Hint("Run 'rnm apply --last' to apply this plan."))
	return nil
}

// settingsError maps settings resolution failures to a stable code.
func settingsError(err error) error {
	switch {
	case errors.Is(err, presets.ErrNotFound):
		return handleError(ErrPresetNotFound, err, "Run 'rnm preset list' to see saved presets")
	case errors.Is(err, settings.ErrInvalid):
		return handleError(ErrInvalidSettings, err, "Run 'rnm methods' for the options of each method")
	}
	return handleError(ErrInternal, err, "")
}

func init() {
	previewSettings = newSettingsFlags(previewCmd.Flags())
	previewScope = newScopeFlags(previewCmd.Flags())
	rootCmd.AddCommand(previewCmd)
}
