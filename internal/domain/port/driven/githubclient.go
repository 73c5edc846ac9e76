package driven

import (
	"context"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// GitHubClient defines the driven port for fetching pull request data from
// GitHub. Each method reports absence independently: FetchPullRequest returns
// (nil, nil) when the upstream has no such PR, and the list methods return
// empty results. Enrichment additionally treats hard errors from any method
// as soft absence, so implementations do not need to mask transport failures.
type GitHubClient interface {
	// FetchPullRequest retrieves the PR object, or (nil, nil) if it does not exist.
	FetchPullRequest(ctx context.Context, ref model.PRRef) (*model.PRMetadata, error)

	// FetchChangedFiles retrieves the filenames changed by the PR (one bounded page).
	FetchChangedFiles(ctx context.Context, ref model.PRRef) ([]string, error)

	// FetchReviewCount retrieves the number of reviews submitted on the PR.
	FetchReviewCount(ctx context.Context, ref model.PRRef) (int, error)
}
