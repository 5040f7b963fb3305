package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rnm/internal/execute"
	"github.com/aidanlsb/rnm/internal/journal"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/ui"
	"github.com/aidanlsb/rnm/internal/watcher"
)

var (
	watchSettings *settingsFlags
	watchScope    *scopeFlags
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Rename new files as they appear in a folder",
	Long: `Watch a folder and rename files created in it with the current settings.

Files that arrive close together are renamed as one batch. Each batch is
recorded and can be undone. A sequence carries on from the last number used
in this session, so later batches do not reuse numbers. Restarting the
watcher starts the sequence again at --start-at.

The watcher:
- Waits until no new file has arrived for the debounce delay
- Ignores hidden files and its own temporary names
- Never renames a file it produced itself
- Watches subfolders with --recursive

Examples:
  rnm watch ~/Downloads/scans -m date --date-type modified
  rnm watch inbox --preset photos --debounce 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	st, err := watchSettings.resolve()
	if err != nil {
		return settingsError(err)
	}
	if watchScope.flags.Changed("scope") && watchScope.scope != plan.ScopeFile {
		return handleErrorMsg(ErrInvalidInput, "watch only renames files", "")
	}
	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("not a directory: %s", args[0]), "")
	}
	wait, err := getConfig().LockWait()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	w, err := watcher.New(watcher.Config{
		Dir:           args[0],
		Fs:            fsys,
		Settings:      st,
		Order:         watchScope.order,
		Recurse:       st.IncludeSubfolders,
		LockPath:      paths.Lock,
		LockTimeout:   wait,
		DebounceDelay: watchDebounce,
		Debug:         verbose,
		OnBatch:       reportWatchBatch(st),
	})
	if err != nil {
		return handleError(ErrInvalidSettings, err, "")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !isJSONOutput() {
		fmt.Println(ui.Infof("Watching %s with %s (Ctrl+C to stop)", ui.FilePath(args[0]), st.Method))
	}
	err = w.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return handleError(ErrInternal, err, "")
	}
	return nil
}

// reportWatchBatch records each batch and prints it, one JSON document per
// batch under --json.
func reportWatchBatch(st settings.Settings) func([]execute.Result) {
	return func(results []execute.Result) {
		batch, warnings := recordBatch(journal.SourceWatch, results, func(j *journal.Journal) (int64, error) {
			return j.Record(journal.SourceWatch, string(plan.ScopeFile), st, results)
		})
		data := newBatchData(batch, results)
		if isJSONOutput() {
			outputSuccessWithWarnings(data, warnings, &Meta{Count: data.Total})
			return
		}
		printResults(results)
		fmt.Println(ui.Hint(fmt.Sprintf("%s  batch %d: %s", time.Now().Format("15:04:05"), batch, ui.OutcomeCounts(data.Succeeded, data.Failed))))
		printWarnings(warnings)
	}
}

func init() {
	watchSettings = newSettingsFlags(watchCmd.Flags())
	watchScope = newScopeFlags(watchCmd.Flags())
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a batch is renamed")
	rootCmd.AddCommand(watchCmd)
}
