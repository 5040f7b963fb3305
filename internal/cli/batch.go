package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aidanlsb/rnm/internal/audit"
	"github.com/aidanlsb/rnm/internal/collect"
	"github.com/aidanlsb/rnm/internal/execute"
	"github.com/aidanlsb/rnm/internal/journal"
	"github.com/aidanlsb/rnm/internal/lock"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/ui"
)

// planData is the JSON shape of a computed plan.
type planData struct {
	Scope      plan.Scope        `json:"scope"`
	Order      collect.Order     `json:"order"`
	Method     settings.Method   `json:"method"`
	Inputs     []string          `json:"inputs"`
	Candidates int               `json:"candidates"`
	Unchanged  int               `json:"unchanged"`
	Items      []plan.RenameItem `json:"items"`
}

// batchData is the JSON shape of an executed batch.
type batchData struct {
	Batch     int64            `json:"batch,omitempty"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []execute.Result `json:"results"`
}

// computePlan collects the candidate rows for inputs, puts them in order and
// plans the renames.
func computePlan(scope plan.Scope, order collect.Order, inputs []string, st settings.Settings) (*planData, error) {
	if len(inputs) == 0 {
		inputs = []string{"."}
	}
	p := plan.New(fsys)
	rows, err := p.Candidates(scope, inputs, st.IncludeSubfolders)
	if err != nil {
		return nil, err
	}
	rows = collect.Arrange(rows, order)
	logDebug("%d candidate(s) in %s order", len(rows), order)

	items, err := p.Select(scope, rows, st)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []plan.RenameItem{}
	}
	return &planData{
		Scope:      scope,
		Order:      order,
		Method:     st.Method,
		Inputs:     inputs,
		Candidates: len(rows),
		Unchanged:  len(rows) - len(items),
		Items:      items,
	}, nil
}

// executeBatch applies items while holding the batch lock.
func executeBatch(ctx context.Context, items []plan.RenameItem) ([]execute.Result, error) {
	wait, err := getConfig().LockWait()
	if err != nil {
		return nil, err
	}
	l, err := lock.Acquire(ctx, paths.Lock, wait)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	var spinner *ui.Spinner
	if !isJSONOutput() {
		spinner = ui.NewSpinner(fmt.Sprintf("Renaming %d %s...", len(items), ui.Pluralize(len(items), "item", "items")))
		spinner.Start()
	}
	results := execute.New(fsys).Apply(items)
	if spinner != nil {
		spinner.Stop()
	}
	return results, nil
}

// recordBatch journals results through record and appends them to the audit
// log. Failures here never undo the renames, so they come back as warnings.
func recordBatch(source string, results []execute.Result, record func(j *journal.Journal) (int64, error)) (int64, []Warning) {
	var warnings []Warning

	var batch int64
	j, err := journal.Open(paths.Journal)
	if err == nil {
		batch, err = record(j)
		j.Close()
	}
	if err != nil {
		logDebug("journal: %v", err)
		warnings = append(warnings, Warning{
			Code:    WarnJournalFailed,
			Message: fmt.Sprintf("batch not recorded, undo will not be available: %v", err),
			Ref:     paths.Journal,
		})
	}

	auditLog := audit.New(paths.Audit, getConfig().AuditEnabled())
	for _, r := range results {
		if err := auditLog.LogRename(batch, source, r); err != nil {
			warnings = append(warnings, newWarning(WarnAuditFailed, err, paths.Audit))
			break
		}
	}
	return batch, warnings
}

func newBatchData(batch int64, results []execute.Result) batchData {
	ok, failed := execute.Summarize(results)
	if results == nil {
		results = []execute.Result{}
	}
	return batchData{Batch: batch, Total: len(results), Succeeded: ok, Failed: failed, Results: results}
}

// lockError maps lock failures to a stable code.
func lockError(err error) error {
	if errors.Is(err, lock.ErrLocked) {
		return handleError(ErrLocked, err, "Another rnm process is renaming; try again when it finishes")
	}
	return handleError(ErrInternal, err, "")
}

// printPlan lists planned renames.
func printPlan(items []plan.RenameItem) {
	table := ui.NewRenameTable(ui.NewDisplayContext(os.Stdout))
	for _, it := range items {
		table.AddRow(ui.RenameRow{OldPath: it.OldPath, NewPath: it.NewPath})
	}
	fmt.Print(table.Render())
}

// printResults lists executed renames with their outcome.
func printResults(results []execute.Result) {
	table := ui.NewRenameTable(ui.NewDisplayContext(os.Stdout))
	for _, r := range results {
		row := ui.RenameRow{OldPath: r.OldPath, NewPath: r.NewPath, Status: ui.SymbolSuccess}
		if !r.OK {
			row.Status = ui.SymbolError
			row.Note = r.Error
		}
		table.AddRow(row)
	}
	fmt.Print(table.Render())
}

func printWarnings(warnings []Warning) {
	for _, w := range warnings {
		fmt.Println(ui.Warning(w.Message))
	}
}
