// Package history persists a record of each test run to a local sqlite
// database, schema-and-migrate style. Last and Trend query a test's most
// recent outcome and its recent runs; the CLI records runs here but its
// --list mode does not read them.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store is a handle on the run-history database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    test_name TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    duration_ms INTEGER NOT NULL,
    error_count INTEGER NOT NULL,
    aborted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_runs_test_name ON runs(test_name, started_at DESC);
`

// Open creates the database file and its directory if needed, and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one completed test run.
func (s *Store) Record(testName string, durationMS int64, errorCount int, aborted bool) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (test_name, duration_ms, error_count, aborted) VALUES (?, ?, ?, ?)`,
		testName, durationMS, errorCount, aborted,
	)
	return err
}

// LastOutcome is the most recent recorded run for a test.
type LastOutcome struct {
	ErrorCount int
	Aborted    bool
	StartedAt  string
}

// Last returns the most recent run recorded for testName, if any.
func (s *Store) Last(testName string) (*LastOutcome, error) {
	row := s.db.QueryRow(
		`SELECT error_count, aborted, started_at FROM runs WHERE test_name = ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		testName,
	)
	var o LastOutcome
	if err := row.Scan(&o.ErrorCount, &o.Aborted, &o.StartedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Trend returns the last n runs for testName, most recent first.
func (s *Store) Trend(testName string, n int) ([]LastOutcome, error) {
	rows, err := s.db.Query(
		`SELECT error_count, aborted, started_at FROM runs WHERE test_name = ? ORDER BY started_at DESC, id DESC LIMIT ?`,
		testName, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LastOutcome
	for rows.Next() {
		var o LastOutcome
		if err := rows.Scan(&o.ErrorCount, &o.Aborted, &o.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
