package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// createdAtLayout keeps the fraction fixed-width so created_at sorts
// chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists run records to SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewStore opens or creates a store.
// The path should be a file path (e.g., "./runs.db") or ":memory:" for testing.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases intact across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			seed INTEGER NOT NULL,
			params TEXT NOT NULL,
			results TEXT NOT NULL,
			sim_time REAL NOT NULL,
			wall_ns INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_model
		ON runs(model, created_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Store{db: db}, nil
}

// Save inserts rec. A missing RunID is generated and CreatedAt defaults to
// now; the stored id is returned.
func (s *Store) Save(rec Record) (string, error) {
	if rec.Model == "" {
		return "", fmt.Errorf("%w: model is empty", ErrInvalidRecord)
	}
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	} else if _, err := uuid.Parse(rec.RunID); err != nil {
		return "", fmt.Errorf("%w: run id %q: %v", ErrInvalidRecord, rec.RunID, err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	params, err := yaml.Marshal(rec.Params)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (run_id, model, seed, params, results, sim_time, wall_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.Model, rec.Seed, string(params), string(results),
		rec.SimTime, rec.WallDuration.Nanoseconds(), rec.CreatedAt.UTC().Format(createdAtLayout))
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return rec.RunID, nil
}

// List returns the records of model, oldest first. An empty model lists
// every record.
func (s *Store) List(model string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT run_id, model, seed, params, results, sim_time, wall_ns, created_at
		FROM runs
		WHERE ? = '' OR model = ?
		ORDER BY created_at, run_id
	`, model, model)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var results, createdAt string
		var wallNs int64
		if err := rows.Scan(&rec.RunID, &rec.Model, &rec.Seed, &rec.ParamsYAML, &results,
			&rec.SimTime, &wallNs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(results), &rec.Results); err != nil {
			return nil, fmt.Errorf("decode results of %s: %w", rec.RunID, err)
		}
		rec.WallDuration = time.Duration(wallNs)
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", rec.RunID, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return records, nil
}

// Close closes the store. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
