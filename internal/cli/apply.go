package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/internal/journal"
	"github.com/aidanlsb/rnm/internal/lastplan"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/ui"
)

var (
	applySettings *settingsFlags
	applyScope    *scopeFlags
	applyConfirm  bool
	applyLast     bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [paths...]",
	Short: "Rename files",
	Long: `Plan and execute a rename.

Without --confirm the plan is shown and, in a terminal, you are asked before
anything moves. Scripts and --json callers must pass --confirm.

--last executes the plan stored by the most recent 'rnm preview' instead of
computing a new one. Items whose source is gone are skipped with a warning.

Every batch is recorded; see 'rnm history' and 'rnm undo'.

Examples:
  rnm apply -m add-text --text draft_ --confirm notes/
  rnm preview -m sequence . && rnm apply --last`,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	start := time.Now()

	var (
		items    []plan.RenameItem
		st       settings.Settings
		scope    plan.Scope
		warnings []Warning
	)

	if applyLast {
		if len(args) > 0 {
			return handleErrorMsg(ErrInvalidInput, "--last cannot be combined with paths", "Run 'rnm preview <paths>' first, then 'rnm apply --last'")
		}
		lp, err := lastplan.Read(fsys, paths.LastPlan)
		if err != nil {
			if errors.Is(err, lastplan.ErrNoLastPlan) {
				return handleError(ErrInvalidInput, err, "Run 'rnm preview' first")
			}
			return handleError(ErrInternal, err, "")
		}
		for _, missing := range lp.Missing(fsys) {
			warnings = append(warnings, Warning{Code: WarnSourcesMissing, Message: "source no longer exists, skipped", Ref: missing})
		}
		items, st, scope = lp.Present(fsys), lp.Settings, lp.Scope
	} else {
		var err error
		st, err = applySettings.resolve()
		if err != nil {
			return settingsError(err)
		}
		scope, err = applyScope.resolveScope()
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		data, err := computePlan(scope, applyScope.order, args, st)
		if err != nil {
			return handleError(ErrPlanFailed, err, "")
		}
		items = data.Items
	}

	if len(items) == 0 {
		warnings = append(warnings, Warning{Code: WarnNothingToDo, Message: "no names change"})
		if isJSONOutput() {
			outputSuccessWithWarnings(newBatchData(0, nil), warnings, nil)
			return nil
		}
		printWarnings(warnings)
		return nil
	}

	if !applyConfirm {
		if !shouldPromptForConfirm() {
			if !isJSONOutput() {
				printPlan(items)
			}
			return handleConfirmRequired(
				fmt.Sprintf("%d %s would be renamed; confirmation required", len(items), ui.Pluralize(len(items), "item", "items")),
				confirmDetails{Items: items, Command: rerunCommand(cmd, args, "--confirm")})
		}
		printPlan(items)
		fmt.Println()
		if !promptForConfirm(fmt.Sprintf("Rename %d %s?", len(items), ui.Pluralize(len(items), "item", "items"))) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	results, err := executeBatch(commandContext(cmd), items)
	if err != nil {
		return lockError(err)
	}

	batch, recordWarnings := recordBatch(journal.SourceApply, results, func(j *journal.Journal) (int64, error) {
		return j.Record(journal.SourceApply, string(scope), st, results)
	})
	warnings = append(warnings, recordWarnings...)
	if err := lastplan.Clear(fsys, paths.LastPlan); err != nil {
		logDebug("last plan not cleared: %v", err)
	}
	if w := rememberSettings(st, scope); w != nil {
		warnings = append(warnings, *w)
	}

	data := newBatchData(batch, results)
	if data.Failed > 0 {
		warnings = append(warnings, Warning{
			Code:    WarnApplyPartial,
			Message: fmt.Sprintf("%d of %d renames failed", data.Failed, data.Total),
		})
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(data, warnings, &Meta{
			Count:     data.Total,
			ElapsedMs: time.Since(start).Milliseconds(),
		})
		return nil
	}

	printResults(results)
	fmt.Println()
	if data.Failed == 0 {
		fmt.Println(ui.Success(ui.OutcomeCounts(data.Succeeded, data.Failed)))
	} else {
		fmt.Println(ui.Error(ui.OutcomeCounts(data.Succeeded, data.Failed)))
	}
	printWarnings(warnings)
	if batch > 0 && data.Succeeded > 0 {
		fmt.Println(ui.Hint(fmt.Sprintf("Undo with 'rnm undo %d'.", batch)))
	}
	if data.Failed > 0 {
		return fmt.Errorf("%d of %d renames failed", data.Failed, data.Total)
	}
	return nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func init() {
	applySettings = newSettingsFlags(applyCmd.Flags())
	applyScope = newScopeFlags(applyCmd.Flags())
	applyCmd.Flags().BoolVar(&applyConfirm, "confirm", false, "Apply without asking")
	applyCmd.Flags().BoolVar(&applyLast, "last", false, "Apply the plan from the last preview")
	rootCmd.AddCommand(applyCmd)
}
