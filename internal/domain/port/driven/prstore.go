package driven

import (
	"context"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// PRStore defines the driven port for pull request persistence.
//
// Upsert must serialize concurrent writes for the same record key (last
// writer wins); writes for different keys need no coordination.
type PRStore interface {
	// Upsert inserts the record or, if its id already exists, replaces every
	// non-key field.
	Upsert(ctx context.Context, pr model.PullRequest) error

	// GetRecent returns up to limit records ordered by
	// COALESCE(updated_at, created_at) descending, ties broken by insertion
	// order. A non-empty repoFilter of the form "owner/repo" restricts the
	// result to that repository.
	GetRecent(ctx context.Context, limit int, repoFilter string) ([]model.PullRequest, error)

	// Link records that a run referenced a pull request. Inserting the same
	// pair twice is a no-op, never an error.
	Link(ctx context.Context, runID, prID string) error

	// Count returns the total number of stored pull request records.
	Count(ctx context.Context) (int, error)
}
