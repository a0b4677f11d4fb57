// Package checkpoint keeps a per-run ledger of finished items in SQLite so an
// interrupted ingest can resume where it stopped.
package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	run_id     TEXT NOT NULL,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (run_id, source)
)`

// Ledger records item status per run
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Run summarizes one run in the ledger
type Run struct {
	ID        string
	Items     int
	UpdatedAt time.Time
}

// Open opens or creates the ledger at path
func Open(ctx context.Context, path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create checkpoint directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure checkpoint: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create checkpoint table: %w", err)
	}

	return &Ledger{db: db, now: time.Now}, nil
}

// Close closes the database
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Completed returns the last recorded status of every item in the run, keyed by source
func (l *Ledger) Completed(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT source, status FROM items WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query checkpoint: %w", err)
	}
	defer func() { _ = rows.Close() }()

	done := make(map[string]string)
	for rows.Next() {
		var source, status string
		if err := rows.Scan(&source, &status); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		done[source] = status
	}
	return done, rows.Err()
}

// Record stores the status of one item, replacing an earlier one
func (l *Ledger) Record(ctx context.Context, runID, source, status string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO items (run_id, source, status, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (run_id, source) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		runID, source, status, l.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record checkpoint %s: %w", source, err)
	}
	return nil
}

// Runs lists runs, most recent first
func (l *Ledger) Runs(ctx context.Context) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, COUNT(*), MAX(updated_at) FROM items
		GROUP BY run_id ORDER BY MAX(updated_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var updated string
		if err := rows.Scan(&r.ID, &r.Items, &updated); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			r.UpdatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Forget deletes every item of a run
func (l *Ledger) Forget(ctx context.Context, runID string) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM items WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("forget run %s: %w", runID, err)
	}
	return res.RowsAffected()
}
