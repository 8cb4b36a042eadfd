// Package history archives completed run results in Postgres. It is a
// write-behind audit log: reconciliation itself never reads it, so a
// missing or unreachable database degrades to a warning, not a
// failure.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/winback/message-service/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS reconcile_runs (
	id              TEXT PRIMARY KEY,
	operation       TEXT NOT NULL,
	environment     TEXT NOT NULL,
	dry_run         BOOLEAN NOT NULL,
	total           INTEGER NOT NULL,
	succeeded       INTEGER NOT NULL,
	skipped         INTEGER NOT NULL,
	failed          INTEGER NOT NULL,
	rate_limited    INTEGER NOT NULL,
	interrupted     BOOLEAN NOT NULL,
	failed_rows_path TEXT,
	outcomes        JSONB,
	started_at      TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reconcile_runs_started_at ON reconcile_runs (started_at DESC);
`

// RunRecord is one archived run as stored.
type RunRecord struct {
	ID             string          `json:"id"`
	Operation      string          `json:"operation"`
	Environment    string          `json:"environment"`
	DryRun         bool            `json:"dryRun"`
	Total          int             `json:"total"`
	Succeeded      int             `json:"succeeded"`
	Skipped        int             `json:"skipped"`
	Failed         int             `json:"failed"`
	RateLimited    int             `json:"rateLimited"`
	Interrupted    bool            `json:"interrupted"`
	FailedRowsPath string          `json:"failedRowsPath,omitempty"`
	Outcomes       json.RawMessage `json:"outcomes,omitempty"`
	StartedAt      time.Time       `json:"startedAt"`
	CompletedAt    time.Time       `json:"completedAt"`
}

// Store wraps a pgx pool for run archival.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies connectivity.
func Connect(ctx context.Context, connString string, maxConns int) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}
	config.MaxConns = int32(maxConns)
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the runs table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// SaveRun archives one completed run.
func (s *Store) SaveRun(ctx context.Context, result *types.RunResult) error {
	outcomes, err := json.Marshal(result.Outcomes)
	if err != nil {
		return fmt.Errorf("error encoding outcomes: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO reconcile_runs (
			id, operation, environment, dry_run,
			total, succeeded, skipped, failed, rate_limited, interrupted,
			failed_rows_path, outcomes, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		result.RunID, result.OperationName, string(result.Environment), result.DryRun,
		result.Total, result.Succeeded, result.Skipped, result.Failed,
		result.RateLimited, result.Interrupted,
		result.FailedRowsPath, outcomes, result.StartedAt, result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving run %s: %w", result.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, operation, environment, dry_run,
		       total, succeeded, skipped, failed, rate_limited, interrupted,
		       COALESCE(failed_rows_path, ''), started_at, completed_at
		FROM reconcile_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.Operation, &r.Environment, &r.DryRun,
			&r.Total, &r.Succeeded, &r.Skipped, &r.Failed, &r.RateLimited, &r.Interrupted,
			&r.FailedRowsPath, &r.StartedAt, &r.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRun returns one archived run with its full outcome detail, or
// (nil, nil) when the ID is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, operation, environment, dry_run,
		       total, succeeded, skipped, failed, rate_limited, interrupted,
		       COALESCE(failed_rows_path, ''), outcomes, started_at, completed_at
		FROM reconcile_runs
		WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching run %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var r RunRecord
	if err := rows.Scan(
		&r.ID, &r.Operation, &r.Environment, &r.DryRun,
		&r.Total, &r.Succeeded, &r.Skipped, &r.Failed, &r.RateLimited, &r.Interrupted,
		&r.FailedRowsPath, &r.Outcomes, &r.StartedAt, &r.CompletedAt,
	); err != nil {
		return nil, fmt.Errorf("error scanning run: %w", err)
	}
	return &r, nil
}
