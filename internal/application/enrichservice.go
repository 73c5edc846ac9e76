package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
	"github.com/ericfisherdev/prtriage/internal/domain/port/driven"
)

// Filename substrings indicating test or documentation files. Matched
// case-insensitively against each changed filename.
var (
	testMarkers = []string{"test/", "/test/", "tests/", ".spec.", ".test."}
	docMarkers  = []string{"readme", "docs/", "/docs/", ".md", ".rst"}
)

// EnrichService turns a resolved PR reference into an enriched record by
// fetching the PR object, its changed-file list, and its review list, then
// deriving the heuristic flags. It is a pure transform over fetched data;
// persisting the record is the caller's explicit step.
type EnrichService struct {
	gh     driven.GitHubClient
	logger *slog.Logger
}

// NewEnrichService creates an EnrichService backed by the given fetch client.
func NewEnrichService(gh driven.GitHubClient) *EnrichService {
	return &EnrichService{gh: gh, logger: slog.Default()}
}

// Enrich fetches and normalizes one pull request. It never fails: each fetch
// degrades independently, and when the PR object itself is unavailable the
// record is built with null descriptive fields and a synthesized HTML URL.
func (s *EnrichService) Enrich(ctx context.Context, ref model.PRRef) model.PullRequest {
	meta, err := s.gh.FetchPullRequest(ctx, ref)
	if err != nil {
		s.logger.Warn("pull request fetch failed, building degraded record", "pr", ref.ID(), "error", err)
		meta = nil
	}

	files, err := s.gh.FetchChangedFiles(ctx, ref)
	if err != nil {
		s.logger.Warn("changed-file fetch failed", "pr", ref.ID(), "error", err)
		files = nil
	}

	reviewCount, err := s.gh.FetchReviewCount(ctx, ref)
	if err != nil {
		s.logger.Warn("review fetch failed", "pr", ref.ID(), "error", err)
		reviewCount = 0
	}

	hasTests, docRatio := fileHeuristics(files)

	pr := model.PullRequest{
		Owner:         ref.Owner,
		Repo:          ref.Repo,
		Number:        ref.Number,
		HTMLURL:       fmt.Sprintf("https://github.com/%s/%s/pull/%d", ref.Owner, ref.Repo, ref.Number),
		HasTests:      hasTests,
		DocTouchRatio: docRatio,
		ReviewCount:   reviewCount,
		CIStatus:      model.CIStatusUnknown,
	}

	if meta == nil {
		return pr
	}

	if meta.Title != "" {
		pr.Title = ptr(meta.Title)
	}
	if meta.Author != "" {
		pr.Author = ptr(meta.Author)
	}
	if meta.HTMLURL != "" {
		pr.HTMLURL = meta.HTMLURL
	}

	state := prState(meta)
	pr.State = &state

	pr.CreatedAt = meta.CreatedAt
	pr.UpdatedAt = meta.UpdatedAt
	pr.MergedAt = meta.MergedAt
	pr.Additions = meta.Additions
	pr.Deletions = meta.Deletions
	pr.ChangedFiles = meta.ChangedFiles
	pr.Draft = meta.Draft

	return pr
}

// prState derives the record state: a merged_at timestamp wins over the
// open/closed state the API reports.
func prState(meta *model.PRMetadata) model.PRState {
	if meta.MergedAt != nil {
		return model.PRStateMerged
	}
	switch meta.State {
	case string(model.PRStateClosed):
		return model.PRStateClosed
	default:
		return model.PRStateOpen
	}
}

// fileHeuristics derives has_tests and the doc-touch ratio from the changed
// filenames. Zero changed files yields (false, 0).
func fileHeuristics(files []string) (hasTests bool, docRatio float64) {
	if len(files) == 0 {
		return false, 0
	}

	docTouches := 0
	for _, f := range files {
		lower := strings.ToLower(f)
		if containsAny(lower, testMarkers) {
			hasTests = true
		}
		if containsAny(lower, docMarkers) {
			docTouches++
		}
	}

	return hasTests, float64(docTouches) / float64(len(files))
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}
