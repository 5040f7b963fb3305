package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/internal/audit"
	"github.com/aidanlsb/rnm/internal/journal"
	"github.com/aidanlsb/rnm/internal/ui"
)

var undoConfirm bool

var undoCmd = &cobra.Command{
	Use:   "undo [batch-id]",
	Short: "Rename a batch back",
	Long: `Revert a recorded batch by renaming every successful item back to its old
name, last rename first. Without an id the newest batch that has not been
undone is used.

The undo itself is recorded as a batch. Undoing the same batch twice is
refused.

Examples:
  rnm undo --confirm
  rnm undo 12 --confirm`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	start := time.Now()

	j, err := journal.Open(paths.Journal)
	if err != nil {
		return handleError(ErrJournalError, err, "")
	}
	var b *journal.Batch
	if len(args) == 1 {
		id, perr := parseBatchID(args[0])
		if perr != nil {
			j.Close()
			return handleError(ErrInvalidInput, perr, "")
		}
		b, err = j.Batch(id)
	} else {
		b, err = j.LatestUndoable()
	}
	j.Close()
	if err != nil {
		return batchError(err)
	}
	if b.Undone() {
		return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("batch %d was already undone", b.ID), "")
	}

	items := b.UndoItems()
	if len(items) == 0 {
		warnings := []Warning{{Code: WarnNothingToDo, Message: fmt.Sprintf("batch %d has no successful renames", b.ID)}}
		if isJSONOutput() {
			outputSuccessWithWarnings(newBatchData(0, nil), warnings, nil)
			return nil
		}
		printWarnings(warnings)
		return nil
	}

	if !undoConfirm {
		if !shouldPromptForConfirm() {
			if !isJSONOutput() {
				printPlan(items)
			}
			return handleConfirmRequired(
				fmt.Sprintf("undo of batch %d would rename %d %s; confirmation required", b.ID, len(items), ui.Pluralize(len(items), "item", "items")),
				confirmDetails{Batch: b.ID, Items: items, Command: rerunCommand(cmd, args, "--confirm")})
		}
		printPlan(items)
		fmt.Println()
		if !promptForConfirm(fmt.Sprintf("Undo batch %d?", b.ID)) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	results, err := executeBatch(commandContext(cmd), items)
	if err != nil {
		return lockError(err)
	}

	batch, warnings := recordBatch(journal.SourceUndo, results, func(j *journal.Journal) (int64, error) {
		return j.RecordUndo(b.ID, b.Settings, results)
	})
	data := newBatchData(batch, results)
	if err := audit.New(paths.Audit, getConfig().AuditEnabled()).LogUndo(b.ID, data.Succeeded, data.Failed); err != nil {
		logDebug("audit: %v", err)
	}
	if data.Failed > 0 {
		warnings = append(warnings, Warning{
			Code:    WarnApplyPartial,
			Message: fmt.Sprintf("%d of %d items could not be renamed back", data.Failed, data.Total),
		})
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(map[string]interface{}{
			"undo_of":   b.ID,
			"batch":     data.Batch,
			"total":     data.Total,
			"succeeded": data.Succeeded,
			"failed":    data.Failed,
			"results":   data.Results,
		}, warnings, &Meta{Count: data.Total, ElapsedMs: time.Since(start).Milliseconds()})
		return nil
	}

	printResults(results)
	fmt.Println()
	if data.Failed == 0 {
		fmt.Println(ui.Successf("Undid batch %d: %s", b.ID, ui.OutcomeCounts(data.Succeeded, data.Failed)))
	} else {
		fmt.Println(ui.Errorf("Undid batch %d partially: %s", b.ID, ui.OutcomeCounts(data.Succeeded, data.Failed)))
	}
	printWarnings(warnings)
	if data.Failed > 0 {
		return fmt.Errorf("%d of %d items could not be renamed back", data.Failed, data.Total)
	}
	return nil
}

func init() {
	undoCmd.Flags().BoolVar(&undoConfirm, "confirm", false, "Undo without asking")
	rootCmd.AddCommand(undoCmd)
}
