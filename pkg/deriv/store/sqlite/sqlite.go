package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/deriv/pkg/deriv/internalerr"
	"github.com/cognicore/deriv/pkg/deriv/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	problem TEXT,
	status TEXT NOT NULL,
	depth INTEGER NOT NULL DEFAULT 0,
	expansions INTEGER NOT NULL DEFAULT 0,
	step_budget INTEGER NOT NULL DEFAULT 0,
	steps TEXT,
	final TEXT,
	started_at TEXT,
	duration_ns INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS runs_status ON runs(status);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// PutRun inserts or replaces a run
func (s *sqliteStore) PutRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id required", internalerr.ErrInvalidInput)
	}
	stepsJSON, err := json.Marshal(r.Steps)
	if err != nil {
		return err
	}
	finalJSON, err := json.Marshal(r.Final)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, problem, status, depth, expansions, step_budget, steps, final, started_at, duration_ns)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	problem=excluded.problem,
	status=excluded.status,
	depth=excluded.depth,
	expansions=excluded.expansions,
	step_budget=excluded.step_budget,
	steps=excluded.steps,
	final=excluded.final,
	started_at=excluded.started_at,
	duration_ns=excluded.duration_ns;
`, r.ID, r.Problem, r.Status, r.Depth, r.Expansions, r.StepBudget,
		string(stepsJSON), string(finalJSON),
		r.StartedAt.UTC().Format(time.RFC3339Nano), int64(r.Duration))
	return err
}

const selectRun = `
SELECT id, problem, status, depth, expansions, step_budget, steps, final, started_at, duration_ns
FROM runs`

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?;`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// ListRuns retrieves the most recent runs; ULID ordering is start order
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r                    store.Run
		stepsJSON, finalJSON string
		startedAt            string
		durationNS           int64
	)
	if err := sc.Scan(&r.ID, &r.Problem, &r.Status, &r.Depth, &r.Expansions, &r.StepBudget,
		&stepsJSON, &finalJSON, &startedAt, &durationNS); err != nil {
		return store.Run{}, err
	}
	if err := json.Unmarshal([]byte(stepsJSON), &r.Steps); err != nil {
		return store.Run{}, err
	}
	if err := json.Unmarshal([]byte(finalJSON), &r.Final); err != nil {
		return store.Run{}, err
	}
	if startedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return store.Run{}, err
		}
		r.StartedAt = t
	}
	r.Duration = time.Duration(durationNS)
	return r, nil
}
