// Package watcher renames files as they appear in a watched folder.
//
// New files are collected for a short debounce window and renamed together as
// one batch. A sequence continues across batches from the last number the
// watcher handed out.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/aidanlsb/rnm/internal/collect"
	"github.com/aidanlsb/rnm/internal/execute"
	"github.com/aidanlsb/rnm/internal/lock"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/settings"
)

// Watcher monitors a directory and renames files created in it.
type Watcher struct {
	dir      string
	fs       afero.Fs
	settings settings.Settings
	order    collect.Order
	recurse  bool

	planner  *plan.Planner
	executor *execute.Executor

	lockPath    string
	lockTimeout time.Duration

	// Configuration
	debounceDelay time.Duration
	debug         bool

	// Internal state
	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	produced  map[string]bool
	numbered  map[string]int // sequence numbers used, by folder or "" when global
	mu        sync.Mutex

	// Callbacks
	onBatch func(results []execute.Result)
}

// Config holds configuration options for the Watcher.
type Config struct {
	Dir      string
	Fs       afero.Fs // Default: afero.NewOsFs()
	Settings settings.Settings
	Order    collect.Order // Default: natural
	Recurse  bool

	// LockPath, when set, is held around each batch.
	LockPath    string
	LockTimeout time.Duration

	DebounceDelay time.Duration // Default: 500ms
	Debug         bool
	OnBatch       func(results []execute.Result) // Optional callback
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Dir, err)
	}

	st := cfg.Settings.Normalize()
	if err := st.Validate(); err != nil {
		return nil, err
	}

	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	order := cfg.Order
	if order == "" {
		order = collect.OrderNatural
	}
	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		dir:           dir,
		fs:            fsys,
		settings:      st,
		order:         order,
		recurse:       cfg.Recurse,
		planner:       plan.New(fsys),
		executor:      execute.New(fsys),
		lockPath:      cfg.LockPath,
		lockTimeout:   cfg.LockTimeout,
		debounceDelay: debounce,
		debug:         cfg.Debug,
		pending:       make(map[string]time.Time),
		produced:      make(map[string]bool),
		numbered:      make(map[string]int),
		onBatch:       cfg.OnBatch,
	}, nil
}

// Start begins watching for new files.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if w.recurse {
		err = w.addWatchRecursive(w.dir)
	} else {
		err = w.fsWatcher.Add(w.dir)
	}
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.logDebug("Watching: %s", w.dir)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("Watcher error: %v", err)
		}
	}
}

// RenameBatch plans and applies one batch over paths. Paths the watcher
// produced itself, temporary names and entries that are gone or not regular
// files are dropped first.
func (w *Watcher) RenameBatch(ctx context.Context, paths []string) ([]execute.Result, error) {
	files := w.eligible(paths)
	if len(files) == 0 {
		return nil, nil
	}
	files = collect.Arrange(files, w.order)

	items, err := w.plan(files)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	w.mu.Lock()
	for _, it := range items {
		w.produced[it.NewPath] = true
	}
	w.mu.Unlock()

	if w.lockPath != "" {
		l, err := lock.Acquire(ctx, w.lockPath, w.lockTimeout)
		if err != nil {
			return nil, err
		}
		defer l.Release()
	}

	results := w.executor.Apply(items)

	w.mu.Lock()
	for _, r := range results {
		if r.OK {
			w.produced[r.NewPath] = true
		}
	}
	w.mu.Unlock()
	return results, nil
}

// plan selects the renames for one batch. For the sequence method each group
// of files starts after the numbers earlier batches used in that group.
func (w *Watcher) plan(files []string) ([]plan.RenameItem, error) {
	if w.settings.Method != settings.MethodSequence {
		return w.planner.Select(plan.ScopeFile, files, w.settings)
	}

	var keys []string
	groups := make(map[string][]string)
	for _, f := range files {
		k := w.sequenceKey(f)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], f)
	}

	var items []plan.RenameItem
	for _, k := range keys {
		st := w.settings
		w.mu.Lock()
		st.SequenceStart += w.numbered[k]
		w.numbered[k] += len(groups[k])
		w.mu.Unlock()

		got, err := w.planner.Select(plan.ScopeFile, groups[k], st)
		if err != nil {
			return nil, err
		}
		items = append(items, got...)
	}
	return items, nil
}

func (w *Watcher) sequenceKey(path string) string {
	if w.settings.SequencePerFolder {
		return filepath.Dir(path)
	}
	return ""
}

func (w *Watcher) eligible(paths []string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if seen[p] || w.produced[p] || w.shouldIgnore(p) {
			continue
		}
		seen[p] = true
		info, err := w.fs.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if info, err := w.fs.Stat(path); err == nil && info.IsDir() {
		if w.recurse && event.Has(fsnotify.Create) {
			if err := w.addWatchRecursive(path); err != nil {
				w.logDebug("Failed to watch %s: %v", path, err)
			}
		}
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.produced[path] {
		return
	}
	w.logDebug("Event: %s %s", event.Op, path)
	w.pending[path] = time.Now()
}

// processDebounced runs batches once files stop changing.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

// processPending renames every pending file once the newest event is older
// than the debounce delay. Files that keep arriving hold the whole batch back
// so a copy of many files is numbered as one group.
func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	ready := make([]string, 0, len(w.pending))
	for path, at := range w.pending {
		if now.Sub(at) < w.debounceDelay {
			w.mu.Unlock()
			return
		}
		ready = append(ready, path)
	}
	w.pending = make(map[string]time.Time)
	w.mu.Unlock()

	sort.Strings(ready)
	results, err := w.RenameBatch(ctx, ready)
	if err != nil {
		w.logDebug("Batch failed: %v", err)
		return
	}
	if len(results) == 0 {
		return
	}
	ok, failed := execute.Summarize(results)
	w.logDebug("Renamed %d, failed %d", ok, failed)
	if w.onBatch != nil {
		w.onBatch(results)
	}
}

// addWatchRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != root && w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logDebug("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

// shouldIgnore returns true for executor temporaries, hidden files and
// anything inside an ignored directory.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if execute.IsTempName(base) || strings.HasPrefix(base, ".") {
		return true
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	if !w.recurse && strings.ContainsRune(rel, filepath.Separator) {
		return true
	}
	parts := strings.Split(filepath.Dir(rel), string(filepath.Separator))
	for _, part := range parts {
		if part != "." && w.shouldIgnoreDir(part) {
			return true
		}
	}
	return false
}

// shouldIgnoreDir returns true if the directory should not be watched.
func (w *Watcher) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || base == "node_modules"
}

// logDebug logs a debug message if debug mode is enabled.
func (w *Watcher) logDebug(format string, args ...interface{}) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[rnm-watch] "+format+"\n", args...)
	}
}
