package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
	"github.com/ericfisherdev/prtriage/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunSource = (*RunRepo)(nil)

// RunRepo reads the runs table populated by the upstream automation pipeline.
// The triage core treats runs as read-only; Upsert exists for the ingest path
// and for seeding test fixtures.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// ListRunsWithPR returns runs carrying a non-empty PR URL, most recent first.
func (r *RunRepo) ListRunsWithPR(ctx context.Context) ([]model.Run, error) {
	const query = `
		SELECT id, title, status, pr_url, created_at, updated_at
		FROM runs
		WHERE pr_url IS NOT NULL AND TRIM(pr_url) <> ''
		ORDER BY COALESCE(updated_at, created_at, id) DESC
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.Title, &run.Status, &run.PRURL, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Upsert inserts or replaces a run record by id.
func (r *RunRepo) Upsert(ctx context.Context, run model.Run) error {
	const query = `
		INSERT INTO runs (id, title, status, pr_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			pr_url = excluded.pr_url,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`

	var prURL *string
	if run.PRURL != "" {
		prURL = &run.PRURL
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		run.ID, run.Title, run.Status, prURL, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", run.ID, err)
	}

	return nil
}
