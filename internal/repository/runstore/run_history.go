package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradepulse/backend/internal/domain/reconrun"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

// RunRepository implements reconrun.Repository on database/sql
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run-history repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create records a completed reconciliation run
func (r *RunRepository) Create(ctx context.Context, run *reconrun.Run) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert", "recon_runs", time.Since(start))
	}()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO recon_runs (kind, source, window_days, rows_found, partial, duration_ms, error, trigger_source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		run.Kind, run.Source, run.WindowDays, run.Rows, run.Partial,
		run.DurationMS, run.Error, run.Trigger, run.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	run.ID = id

	return id, nil
}

// List retrieves recent runs, newest first, with pagination
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]*reconrun.Run, int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", "recon_runs", time.Since(start))
	}()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recon_runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	query := `SELECT id, kind, source, window_days, rows_found, partial, duration_ms, error, trigger_source, created_at
		FROM recon_runs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*reconrun.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, total, nil
}

// Latest retrieves the most recent run of the given kind
func (r *RunRepository) Latest(ctx context.Context, kind string) (*reconrun.Run, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", "recon_runs", time.Since(start))
	}()

	query := `SELECT id, kind, source, window_days, rows_found, partial, duration_ms, error, trigger_source, created_at
		FROM recon_runs WHERE kind = ? ORDER BY created_at DESC, id DESC LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, kind)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no %s run recorded yet", kind)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*reconrun.Run, error) {
	var run reconrun.Run
	var source, errMsg sql.NullString

	err := row.Scan(
		&run.ID, &run.Kind, &source, &run.WindowDays, &run.Rows,
		&run.Partial, &run.DurationMS, &errMsg, &run.Trigger, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Source = source.String
	run.Error = errMsg.String

	return &run, nil
}
