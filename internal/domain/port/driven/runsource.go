package driven

import (
	"context"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// RunSource defines the driven port for reading upstream automation runs.
// The triage core only ever reads runs; it never mutates them.
type RunSource interface {
	// ListRunsWithPR returns runs carrying a non-empty PR URL, most recent
	// first.
	ListRunsWithPR(ctx context.Context) ([]model.Run, error)
}
