// Package history keeps a local SQLite log of ingest runs. Only run
// metadata is stored, never fetched titles or bodies.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status values for a run.
const (
	StatusOK        = "ok"
	StatusNoContent = "no_content"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

// Run is one source fetch.
type Run struct {
	ID        int64
	Source    string
	RootID    string
	StartedAt time.Time
	Duration  time.Duration
	Fetches   int
	Blocks    int
	Status    string
	Error     string
}

// DB wraps the SQLite history database.
type DB struct {
	db *sql.DB
}

// Open creates or opens the history database and runs migrations.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			root_id TEXT NOT NULL DEFAULT '',
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			fetches INTEGER NOT NULL DEFAULT 0,
			blocks INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source, started_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// Record stores a run and returns its id.
func (d *DB) Record(ctx context.Context, r Run) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO runs (source, root_id, started_at, duration_ms, fetches, blocks, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Source, r.RootID, r.StartedAt.UnixMilli(), r.Duration.Milliseconds(),
		r.Fetches, r.Blocks, r.Status, r.Error)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first. An empty source matches
// every source.
func (d *DB) Recent(ctx context.Context, source string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, source, root_id, started_at, duration_ms, fetches, blocks, status, error
		 FROM runs WHERE ? = '' OR source = ?
		 ORDER BY started_at DESC, id DESC LIMIT ?`,
		source, source, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                Run
			startedMs, durMs int64
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.RootID, &startedMs, &durMs,
			&r.Fetches, &r.Blocks, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMs)
		r.Duration = time.Duration(durMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Prune deletes runs started before cutoff and returns how many went.
func (d *DB) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return res.RowsAffected()
}
