// Package voyagestore persists solved voyage schedules so a dashboard or a
// later re-solve can compare against the previous run. It follows the
// teacher's own persistence style: raw database/sql, explicit transactions,
// delete-then-insert upsert by run id, no ORM.
package voyagestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/oceanvolt/voyage-optimizer/voyage"
)

// Store wraps a SQL connection holding the run-history schema. It works
// against either Postgres (via lib/pq) or SQLite (via modernc.org/sqlite);
// both speak database/sql, so the query layer above is driver-agnostic
// aside from placeholder syntax, handled by placeholder.
type Store struct {
	db       *sql.DB
	postgres bool
}

// OpenPostgres opens a Store backed by a Postgres connection string.
func OpenPostgres(connString string) (*Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &Store{db: db, postgres: true}, nil
}

// OpenSQLite opens a Store backed by a SQLite file at path.
func OpenSQLite(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// An in-memory database is private to one connection; cap the pool
		// at one so the whole Store sees a single, consistent database.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, postgres: false}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) placeholder(n int) string {
	if s.postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Migrate creates the run_history table if it does not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	idType := "BIGSERIAL PRIMARY KEY"
	if !s.postgres {
		idType = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS run_history (
			id %s,
			run_id TEXT NOT NULL UNIQUE,
			solved_at TIMESTAMP NOT NULL,
			total_cost_gbp DOUBLE PRECISION NOT NULL,
			total_time_hr DOUBLE PRECISION NOT NULL,
			finish_time_hr DOUBLE PRECISION NOT NULL,
			steps_json TEXT NOT NULL
		)
	`, idType))
	if err != nil {
		return fmt.Errorf("failed to migrate run_history: %w", err)
	}
	return nil
}

// SaveRun upserts the solved result for runID, replacing any prior result
// under the same id (a re-solve supersedes its predecessor).
func (s *Store) SaveRun(ctx context.Context, runID string, solvedAt time.Time, result *voyage.OptimizationResult) error {
	stepsJSON, err := json.Marshal(result.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode steps: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM run_history WHERE run_id = %s", s.placeholder(1)),
		runID,
	); err != nil {
		return fmt.Errorf("failed to delete existing run: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO run_history (run_id, solved_at, total_cost_gbp, total_time_hr, finish_time_hr, steps_json)
		VALUES (%s, %s, %s, %s, %s, %s)
	`, s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5), s.placeholder(6))

	if _, err := tx.ExecContext(ctx, query,
		runID, solvedAt, result.TotalCostGBP, result.TotalTimeHr, result.FinishTimeHr, string(stepsJSON),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadLatestRun returns the most recently solved result, or nil if the
// store is empty.
func (s *Store) LoadLatestRun(ctx context.Context) (*voyage.OptimizationResult, string, time.Time, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, solved_at, total_cost_gbp, total_time_hr, finish_time_hr, steps_json
		FROM run_history
		ORDER BY solved_at DESC
		LIMIT 1
	`)

	var runID string
	var solvedAt time.Time
	var result voyage.OptimizationResult
	var stepsJSON string

	err := row.Scan(&runID, &solvedAt, &result.TotalCostGBP, &result.TotalTimeHr, &result.FinishTimeHr, &stepsJSON)
	if err == sql.ErrNoRows {
		return nil, "", time.Time{}, nil
	}
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to load latest run: %w", err)
	}

	if err := json.Unmarshal([]byte(stepsJSON), &result.Steps); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to decode steps: %w", err)
	}

	return &result, runID, solvedAt, nil
}
