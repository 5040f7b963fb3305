// Package audit provides an append-only JSONL log of executed renames.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aidanlsb/rnm/internal/execute"
)

// Operations recorded in the log.
const (
	OpRename   = "rename"
	OpFail     = "fail"
	OpRollback = "rollback"
	OpUndo     = "undo"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp time.Time              `json:"ts"`
	Operation string                 `json:"op"`
	Batch     int64                  `json:"batch,omitempty"`
	OldPath   string                 `json:"old_path,omitempty"`
	NewPath   string                 `json:"new_path,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Source    string                 `json:"source,omitempty"` // apply, undo, watch
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Logger handles writing to the audit log.
type Logger struct {
	path    string
	enabled bool
	mu      sync.Mutex
}

// New creates a logger appending to path.
// If enabled is false, the logger will be a no-op.
func New(path string, enabled bool) *Logger {
	if !enabled || path == "" {
		return &Logger{enabled: false}
	}
	return &Logger{path: path, enabled: true}
}

// Log writes an entry to the audit log.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// LogRename records the outcome of one item.
func (l *Logger) LogRename(batch int64, source string, r execute.Result) error {
	status := r.Status
	if status == "" {
		status = execute.StatusOf(r.OK)
	}
	op := OpFail
	switch status {
	case execute.StatusRenamed:
		op = OpRename
	case execute.StatusRolledBack, execute.StatusStranded:
		op = OpRollback
	}
	return l.Log(Entry{
		Operation: op,
		Batch:     batch,
		Source:    source,
		OldPath:   r.OldPath,
		NewPath:   r.NewPath,
		Error:     r.Error,
	})
}

// LogUndo records that a batch was reverted.
func (l *Logger) LogUndo(batch int64, restored, failed int) error {
	return l.Log(Entry{
		Operation: OpUndo,
		Batch:     batch,
		Source:    "undo",
		Extra: map[string]interface{}{
			"restored": restored,
			"failed":   failed,
		},
	})
}

// Read reads all entries from the audit log.
func (l *Logger) Read() ([]Entry, error) {
	if !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []Entry
	for _, line := range splitLines(string(data)) {
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // Skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadBatch reads the entries of one batch.
func (l *Logger) ReadBatch(batch int64) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if entry.Batch == batch {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// Enabled returns true if the audit logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Path returns the log file location, or "" when disabled.
func (l *Logger) Path() string {
	return l.path
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
