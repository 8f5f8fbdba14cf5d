package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and creates if needed) the run database at dbPath.
// Use ":memory:" for an in-memory database in tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		environment TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		success INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		details TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_environment ON runs(environment);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a finished run.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var detailsJSON []byte
	if run.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(run.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, kind, environment, started_at, duration_ms, success, outcome, details) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Kind, run.Environment, run.StartedAt.Unix(), run.Duration.Milliseconds(),
		boolToInt(run.Success), run.Outcome, detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, environment, started_at, duration_ms, success, outcome, details FROM runs ORDER BY started_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return s.scanRuns(rows)
}

// ByEnvironment returns up to limit runs for one environment, newest first.
func (s *SQLiteStore) ByEnvironment(ctx context.Context, env string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, environment, started_at, duration_ms, success, outcome, details FROM runs WHERE environment = ? ORDER BY started_at DESC, id DESC LIMIT ?",
		env, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return s.scanRuns(rows)
}

func (s *SQLiteStore) scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var startedUnix, durationMillis int64
		var success int
		var detailsJSON []byte

		err := rows.Scan(&r.ID, &r.Kind, &r.Environment, &startedUnix, &durationMillis, &success, &r.Outcome, &detailsJSON)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		r.StartedAt = time.Unix(startedUnix, 0).UTC()
		r.Duration = time.Duration(durationMillis) * time.Millisecond
		r.Success = success != 0

		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &r.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
