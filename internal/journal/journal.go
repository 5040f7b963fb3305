// Package journal keeps a sqlite history of executed rename batches so they
// can be listed and undone.
package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/rnm/internal/execute"
	"github.com/aidanlsb/rnm/internal/plan"
	"github.com/aidanlsb/rnm/internal/settings"
	"github.com/aidanlsb/rnm/internal/sqlutil"
)

// ErrBatchNotFound indicates the requested batch is not in the journal.
var ErrBatchNotFound = errors.New("batch not found")

// Sources of a batch.
const (
	SourceApply = "apply"
	SourceWatch = "watch"
	SourceUndo  = "undo"
)

// Journal is the history database handle.
type Journal struct {
	db *sql.DB
}

// Summary is one row of the batch listing.
type Summary struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Source    string     `json:"source"`
	Scope     string     `json:"scope"`
	Method    string     `json:"method"`
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	UndoneAt  *time.Time `json:"undone_at,omitempty"`
	UndoOf    int64      `json:"undo_of,omitempty"`
}

// Batch is a recorded batch with its items.
type Batch struct {
	Summary
	Settings settings.Settings `json:"settings"`
	Items    []execute.Result  `json:"items"`
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS batches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,   -- unix millis
			source TEXT NOT NULL,
			scope TEXT NOT NULL,
			method TEXT NOT NULL,
			settings TEXT NOT NULL,        -- JSON settings snapshot
			undone_at INTEGER,
			undo_of INTEGER REFERENCES batches(id)
		);

		CREATE TABLE IF NOT EXISTS renames (
			batch_id INTEGER NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			old_path TEXT NOT NULL,
			new_path TEXT NOT NULL,
			ok INTEGER NOT NULL,
			status TEXT,                   -- execute.Status
			error TEXT,
			PRIMARY KEY (batch_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_renames_new_path ON renames(new_path);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return j.ensureColumn("renames", "status", "TEXT")
}

// ensureColumn adds a column missing from a journal created by an older
// release.
func (j *Journal) ensureColumn(table, column, decl string) error {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect journal schema: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := j.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return nil
}

// Record stores an executed batch and returns its id.
func (j *Journal) Record(source, scope string, st settings.Settings, results []execute.Result) (int64, error) {
	return j.record(source, scope, st, results, 0)
}

// RecordUndo stores the batch that reverted batch undoOf and marks undoOf
// as undone, in one transaction.
func (j *Journal) RecordUndo(undoOf int64, st settings.Settings, results []execute.Result) (int64, error) {
	return j.record(SourceUndo, "", st, results, undoOf)
}

func (j *Journal) record(source, scope string, st settings.Settings, results []execute.Result, undoOf int64) (int64, error) {
	snapshot, err := json.Marshal(st)
	if err != nil {
		return 0, fmt.Errorf("failed to encode settings: %w", err)
	}

	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now()
	var undoRef sql.NullInt64
	if undoOf != 0 {
		undoRef = sql.NullInt64{Int64: undoOf, Valid: true}
	}
	res, err := tx.Exec(`
		INSERT INTO batches (created_at, source, scope, method, settings, undo_of)
		VALUES (?, ?, ?, ?, ?, ?)
	`, now.UnixMilli(), source, scope, string(st.Method), string(snapshot), undoRef)
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO renames (batch_id, seq, old_path, new_path, ok, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.Exec(id, i, r.OldPath, r.NewPath, boolInt(r.OK), sqlutil.NullString(string(r.Status)), sqlutil.NullString(r.Error)); err != nil {
			return 0, fmt.Errorf("failed to insert rename: %w", err)
		}
	}

	if undoOf != 0 {
		out, err := tx.Exec(`UPDATE batches SET undone_at = ? WHERE id = ? AND undone_at IS NULL`, now.UnixMilli(), undoOf)
		if err != nil {
			return 0, fmt.Errorf("failed to mark batch %d undone: %w", undoOf, err)
		}
		if n, _ := out.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("%w: %d (or already undone)", ErrBatchNotFound, undoOf)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const summaryQuery = `
	SELECT b.id, b.created_at, b.source, b.scope, b.method, b.undone_at, b.undo_of,
		COUNT(r.seq), COALESCE(SUM(r.ok), 0)
	FROM batches b
	LEFT JOIN renames r ON r.batch_id = b.id
`

func scanSummary(rows *sql.Rows) (Summary, error) {
	var (
		s        Summary
		created  int64
		undoneAt sql.NullInt64
		undoOf   sql.NullInt64
	)
	if err := rows.Scan(&s.ID, &created, &s.Source, &s.Scope, &s.Method, &undoneAt, &undoOf, &s.Total, &s.Succeeded); err != nil {
		return Summary{}, err
	}
	s.CreatedAt = time.UnixMilli(created)
	s.UndoneAt = sqlutil.UnixMilli(undoneAt)
	s.UndoOf = undoOf.Int64
	return s, nil
}

// List returns the most recent batches first. limit <= 0 means no limit.
func (j *Journal) List(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(summaryQuery+`
		GROUP BY b.id
		ORDER BY b.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return sqlutil.ScanRows(rows, scanSummary)
}

// Batch loads one batch with its items.
func (j *Journal) Batch(id int64) (*Batch, error) {
	rows, err := j.db.Query(summaryQuery+`
		WHERE b.id = ?
		GROUP BY b.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %d: %w", id, err)
	}
	summaries, err := sqlutil.ScanRows(rows, scanSummary)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrBatchNotFound, id)
	}

	b := &Batch{Summary: summaries[0]}
	var snapshot string
	if err := j.db.QueryRow(`SELECT settings FROM batches WHERE id = ?`, id).Scan(&snapshot); err != nil {
		return nil, err
	}
	b.Settings = settings.Default()
	if err := json.Unmarshal([]byte(snapshot), &b.Settings); err != nil {
		return nil, fmt.Errorf("batch %d has unreadable settings: %w", id, err)
	}

	rows, err = j.db.Query(`
		SELECT old_path, new_path, ok, status, error FROM renames
		WHERE batch_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	b.Items, err = sqlutil.ScanRows(rows, func(rows *sql.Rows) (execute.Result, error) {
		var (
			r       execute.Result
			status  sql.NullString
			errText sql.NullString
		)
		if err := rows.Scan(&r.OldPath, &r.NewPath, &r.OK, &status, &errText); err != nil {
			return execute.Result{}, err
		}
		r.Status = execute.Status(status.String)
		if r.Status == "" {
			r.Status = execute.StatusOf(r.OK)
		}
		r.Error = errText.String
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// LatestUndoable returns the newest batch that is not itself an undo and has
// not been undone.
func (j *Journal) LatestUndoable() (*Batch, error) {
	var id int64
	err := j.db.QueryRow(`
		SELECT id FROM batches
		WHERE source != ? AND undone_at IS NULL
		ORDER BY id DESC
		LIMIT 1
	`, SourceUndo).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: nothing to undo", ErrBatchNotFound)
	}
	if err != nil {
		return nil, err
	}
	return j.Batch(id)
}

// UndoItems returns the renames that revert the successful items of b, last
// rename first.
func (b *Batch) UndoItems() []plan.RenameItem {
	var items []plan.RenameItem
	for i := len(b.Items) - 1; i >= 0; i-- {
		r := b.Items[i]
		if !r.OK {
			continue
		}
		items = append(items, plan.RenameItem{OldPath: r.NewPath, NewPath: r.OldPath})
	}
	return items
}

// Undone reports whether the batch has been reverted.
func (s Summary) Undone() bool {
	return s.UndoneAt != nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
