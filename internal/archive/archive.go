// Package archive persists completed scenario runs in a SQLite database.
//
// The archive is a driver-side convenience: it records what a run emitted
// (transcript and trace hash) and never feeds back into scenario behavior.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one archived scenario execution.
type Run struct {
	ID         int64
	Scenario   string
	Discipline string
	TraceHash  string
	EventCount int
	Transcript string
	CreatedAt  time.Time
}

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		discipline TEXT NOT NULL,
		trace_hash TEXT NOT NULL,
		event_count INTEGER NOT NULL,
		transcript TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run record and returns its assigned ID.
func (s *Store) SaveRun(ctx context.Context, r Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (scenario, discipline, trace_hash, event_count, transcript)
		VALUES (?, ?, ?, ?, ?)
	`, r.Scenario, r.Discipline, r.TraceHash, r.EventCount, r.Transcript)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// GetRun loads a single run by ID.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, discipline, trace_hash, event_count, transcript, created_at
		FROM runs WHERE id = ?
	`, id)

	var r Run
	if err := row.Scan(&r.ID, &r.Scenario, &r.Discipline, &r.TraceHash, &r.EventCount, &r.Transcript, &r.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &r, nil
}

// ListRuns returns all archived runs in insertion order.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, discipline, trace_hash, event_count, transcript, created_at
		FROM runs ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Scenario, &r.Discipline, &r.TraceHash, &r.EventCount, &r.Transcript, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
