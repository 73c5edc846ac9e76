package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
	"github.com/ericfisherdev/prtriage/internal/domain/port/driven"
)

// defaultRecentLimit bounds GetRecent when the caller passes no usable limit.
const defaultRecentLimit = 50

// Compile-time interface satisfaction check.
var _ driven.PRStore = (*PRRepo)(nil)

// PRRepo is the SQLite implementation of the PRStore port interface.
type PRRepo struct {
	db *DB
}

// NewPRRepo creates a new PRRepo backed by the given DB.
func NewPRRepo(db *DB) *PRRepo {
	return &PRRepo{db: db}
}

// Upsert inserts a pull request record or, on an id conflict, replaces every
// non-key field with the new values. The id is the sole conflict key; there
// is no field-level merge.
func (r *PRRepo) Upsert(ctx context.Context, pr model.PullRequest) error {
	const query = `
		INSERT INTO prs (
			id, owner, repo, number, title, author, state, html_url,
			created_at, updated_at, merged_at, additions, deletions, changed_files,
			draft, review_count, ci_status, has_tests, doc_touch_ratio, diff_stats
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			repo = excluded.repo,
			number = excluded.number,
			title = excluded.title,
			author = excluded.author,
			state = excluded.state,
			html_url = excluded.html_url,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			merged_at = excluded.merged_at,
			additions = excluded.additions,
			deletions = excluded.deletions,
			changed_files = excluded.changed_files,
			draft = excluded.draft,
			review_count = excluded.review_count,
			ci_status = excluded.ci_status,
			has_tests = excluded.has_tests,
			doc_touch_ratio = excluded.doc_touch_ratio,
			diff_stats = excluded.diff_stats
	`

	var state *string
	if pr.State != nil {
		s := string(*pr.State)
		state = &s
	}

	draft := 0
	if pr.Draft {
		draft = 1
	}

	hasTests := 0
	if pr.HasTests {
		hasTests = 1
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		pr.ID(), pr.Owner, pr.Repo, pr.Number, pr.Title, pr.Author, state, pr.HTMLURL,
		pr.CreatedAt, pr.UpdatedAt, pr.MergedAt, pr.Additions, pr.Deletions, pr.ChangedFiles,
		draft, pr.ReviewCount, string(pr.CIStatus), hasTests, pr.DocTouchRatio, pr.DiffStats,
	)
	if err != nil {
		return fmt.Errorf("upsert pull request %s: %w", pr.ID(), err)
	}

	return nil
}

// GetRecent returns up to limit records ordered by
// COALESCE(updated_at, created_at) descending. Ties keep insertion order
// (rowid is stable across ON CONFLICT updates). A repoFilter of "owner/repo"
// restricts the result; a filter that matches nothing yields an empty list.
func (r *PRRepo) GetRecent(ctx context.Context, limit int, repoFilter string) ([]model.PullRequest, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
		SELECT id, owner, repo, number, title, author, state, html_url,
		       created_at, updated_at, merged_at, additions, deletions, changed_files,
		       draft, review_count, ci_status, has_tests, doc_touch_ratio, diff_stats
		FROM prs
	`
	args := []any{}

	if repoFilter != "" {
		owner, repo, _ := strings.Cut(repoFilter, "/")
		query += " WHERE owner = ? AND repo = ?"
		args = append(args, owner, repo)
	}

	query += " ORDER BY COALESCE(updated_at, created_at) DESC, rowid ASC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent pull requests: %w", err)
	}
	defer rows.Close()

	var prs []model.PullRequest
	for rows.Next() {
		pr, err := scanPR(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pull request: %w", err)
		}
		prs = append(prs, *pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pull requests: %w", err)
	}

	return prs, nil
}

// Link records that a run referenced a pull request. Links are append-only;
// inserting an existing pair is a no-op.
func (r *PRRepo) Link(ctx context.Context, runID, prID string) error {
	const query = `INSERT OR IGNORE INTO run_prs (run_id, pr_id) VALUES (?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query, runID, prID)
	if err != nil {
		return fmt.Errorf("link run %s to pull request %s: %w", runID, prID, err)
	}

	return nil
}

// Count returns the total number of stored pull request records.
func (r *PRRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM prs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pull requests: %w", err)
	}
	return count, nil
}

// CountLinks returns the number of run associations for a pull request.
func (r *PRRepo) CountLinks(ctx context.Context, prID string) (int, error) {
	var count int
	err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_prs WHERE pr_id = ?`, prID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count links for %s: %w", prID, err)
	}
	return count, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPR(s scanner) (*model.PullRequest, error) {
	var pr model.PullRequest
	var id string
	var state *string
	var draft, hasTests int
	var ciStatus string

	err := s.Scan(
		&id, &pr.Owner, &pr.Repo, &pr.Number, &pr.Title, &pr.Author, &state, &pr.HTMLURL,
		&pr.CreatedAt, &pr.UpdatedAt, &pr.MergedAt, &pr.Additions, &pr.Deletions, &pr.ChangedFiles,
		&draft, &pr.ReviewCount, &ciStatus, &hasTests, &pr.DocTouchRatio, &pr.DiffStats,
	)
	if err != nil {
		return nil, err
	}

	if state != nil {
		st := model.PRState(*state)
		pr.State = &st
	}
	pr.Draft = draft != 0
	pr.HasTests = hasTests != 0
	pr.CIStatus = model.CIStatus(ciStatus)

	return &pr, nil
}
