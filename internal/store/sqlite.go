package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Run is one recorded analysis invocation.
type Run struct {
	ID        string
	Command   string
	State     string
	Units     int
	Output    string
	StartedAt time.Time
	Duration  time.Duration
}

// RunHistory records analysis runs in a local sqlite database so past
// outputs can be traced back to their inputs.
type RunHistory struct {
	db *sql.DB
}

// OpenRunHistory opens (and migrates) the run-history database at path.
func OpenRunHistory(path string) (*RunHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open run history %s", path)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: %s", pragma)
		}
	}

	h := &RunHistory{db: db}
	if err := h.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// Close closes the underlying database.
func (h *RunHistory) Close() error {
	return eris.Wrap(h.db.Close(), "store: close run history")
}

func (h *RunHistory) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	command    TEXT NOT NULL,
	state      TEXT NOT NULL DEFAULT '',
	units      INTEGER NOT NULL DEFAULT 0,
	output     TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at DESC);`

	_, err := h.db.Exec(schema)
	return eris.Wrap(err, "store: migrate run history")
}

// RecordRun inserts a run and returns its generated id.
func (h *RunHistory) RecordRun(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}

	const q = `INSERT INTO runs (id, command, state, units, output, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := h.db.ExecContext(ctx, q,
		r.ID, r.Command, r.State, r.Units, r.Output,
		r.StartedAt.Format(time.RFC3339), r.Duration.Milliseconds())
	if err != nil {
		return "", eris.Wrap(err, "store: record run")
	}
	return r.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (h *RunHistory) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `SELECT id, command, state, units, output, started_at, duration_ms
FROM runs ORDER BY started_at DESC LIMIT ?`
	rows, err := h.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Command, &r.State, &r.Units, &r.Output, &startedAt, &durationMS); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		ts, err := time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, eris.Wrapf(err, "store: parse started_at %q", startedAt)
		}
		r.StartedAt = ts
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate runs")
}
