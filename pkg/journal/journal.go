// Package journal keeps a SQLite log of finished attempts.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gwillem/clawgantry/pkg/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id TEXT PRIMARY KEY,
	mode TEXT NOT NULL,
	card TEXT NOT NULL,
	number INTEGER NOT NULL,
	exit_reason TEXT NOT NULL,
	sensed INTEGER NOT NULL,
	drop_distance INTEGER NOT NULL,
	descended INTEGER NOT NULL,
	distance INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_started_at ON attempts(started_at);
`

// Journal is an attempt log backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Entry is one logged attempt.
type Entry struct {
	ID        string
	Mode      string
	Card      string
	Number    int
	Exit      string
	Sensed    int
	Drop      int
	Descended bool
	Distance  int
	Outcome   string
	Started   time.Time
	Ended     time.Time
}

// Stats summarizes the journal.
type Stats struct {
	Attempts int
	Wins     int
}

// Open creates or opens the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a finished attempt.
func (j *Journal) Record(ctx context.Context, a session.Attempt) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO attempts (id, mode, card, number, exit_reason, sensed, drop_distance,
			descended, distance, outcome, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Mode), a.Card.String(), a.Number, a.Exit.String(),
		a.Grab.Sensed, a.Grab.Drop, a.Grab.Descended, a.Distance, a.Outcome.String(),
		a.Started.UnixMilli(), a.Ended.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert attempt %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, mode, card, number, exit_reason, sensed, drop_distance,
			descended, distance, outcome, started_at, ended_at
		FROM attempts ORDER BY started_at DESC, number DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e              Entry
			started, ended int64
		)
		if err := rows.Scan(&e.ID, &e.Mode, &e.Card, &e.Number, &e.Exit, &e.Sensed, &e.Drop,
			&e.Descended, &e.Distance, &e.Outcome, &started, &ended); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		e.Started = time.UnixMilli(started)
		e.Ended = time.UnixMilli(ended)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats counts attempts and wins.
func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN outcome = 'win' THEN 1 ELSE 0 END), 0)
		FROM attempts`).Scan(&s.Attempts, &s.Wins)
	if err != nil {
		return s, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}

var _ session.Recorder = (*Journal)(nil)
