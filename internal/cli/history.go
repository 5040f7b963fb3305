package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/internal/audit"
	"github.com/aidanlsb/rnm/internal/journal"
	"github.com/aidanlsb/rnm/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [batch-id]",
	Short: "List recorded rename batches",
	Long: `List the most recent rename batches, newest first, or show every item of
one batch.

Examples:
  rnm history
  rnm history --limit 50
  rnm history 12`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	j, err := journal.Open(paths.Journal)
	if err != nil {
		return handleError(ErrJournalError, err, "")
	}
	defer j.Close()

	if len(args) == 1 {
		id, err := parseBatchID(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		b, err := j.Batch(id)
		if err != nil {
			return batchError(err)
		}
		return showBatch(b)
	}

	list, err := j.List(historyLimit)
	if err != nil {
		return handleError(ErrJournalError, err, "")
	}
	if list == nil {
		list = []journal.Summary{}
	}
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"batches": list}, &Meta{Count: len(list)})
		return nil
	}

	if len(list) == 0 {
		fmt.Println(ui.Info("No renames recorded yet."))
		return nil
	}

	table := ui.NewTable(6)
	table.AddRow(ui.Bold.Render("ID"), ui.Bold.Render("When"), ui.Bold.Render("Source"), ui.Bold.Render("Method"), ui.Bold.Render("Renamed"), "")
	for _, s := range list {
		status := ""
		switch {
		case s.Undone():
			status = ui.Hint("undone")
		case s.UndoOf > 0:
			status = ui.Hint(fmt.Sprintf("undo of %d", s.UndoOf))
		}
		table.AddRow(
			strconv.FormatInt(s.ID, 10),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.Source,
			s.Method,
			fmt.Sprintf("%d/%d", s.Succeeded, s.Total),
			status,
		)
	}
	fmt.Fprint(os.Stdout, table.String())
	return nil
}

// batchDetail is one journaled batch plus its audit log entries.
type batchDetail struct {
	*journal.Batch
	Audit []audit.Entry `json:"audit"`
}

func showBatch(b *journal.Batch) error {
	var warnings []Warning
	logger := audit.New(paths.Audit, getConfig().AuditEnabled())
	entries, err := logger.ReadBatch(b.ID)
	if err != nil {
		warnings = append(warnings, newWarning(WarnAuditFailed, err, paths.Audit))
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(batchDetail{Batch: b, Audit: entries}, warnings, &Meta{Count: len(b.Items)})
		return nil
	}

	fmt.Println(ui.Header(fmt.Sprintf("Batch %d", b.ID)))
	fmt.Printf("%s  %s  %s\n\n", b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.Source, b.Method)
	printResults(b.Items)
	if len(entries) > 0 {
		fmt.Println()
		fmt.Println(ui.Header("Audit log"))
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-8s %s", e.Timestamp.Local().Format("15:04:05"), e.Operation, e.OldPath)
			if e.NewPath != "" {
				line += " -> " + e.NewPath
			}
			if e.Error != "" {
				line += "  " + ui.Hint(e.Error)
			}
			fmt.Println(line)
		}
	}
	printWarnings(warnings)
	return nil
}

func parseBatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid batch id %q", raw)
	}
	return id, nil
}

func batchError(err error) error {
	if errors.Is(err, journal.ErrBatchNotFound) {
		return handleError(ErrBatchNotFound, err, "Run 'rnm history' to see recorded batches")
	}
	return handleError(ErrJournalError, err, "")
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of batches to list")
	rootCmd.AddCommand(historyCmd)
}
