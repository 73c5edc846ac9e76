// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
	"github.com/ericfisherdev/prtriage/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

const (
	// listPageSize bounds the single page fetched for files and reviews.
	listPageSize = 100

	maxFetchAttempts  = 3
	initialFetchDelay = 500 * time.Millisecond
)

// Client implements the driven.GitHubClient port using the go-github library.
// Every fetch runs under a bounded per-request timeout and a short backoff
// retry; callers treat exhausted retries as soft absence, so this client
// reports but never masks failures.
type Client struct {
	gh      *gh.Client
	timeout time.Duration
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client)
//
// An empty token yields an unauthenticated client, which works for public
// repositories at reduced rate limits.
func NewClient(token string, timeout time.Duration) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)

	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client, timeout: timeout}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, timeout time.Duration) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client, timeout: timeout}, nil
}

// FetchPullRequest retrieves the PR object for the given reference.
// A 404 from the API is reported as (nil, nil): the item does not exist
// upstream, which is not an error for enrichment purposes.
func (c *Client) FetchPullRequest(ctx context.Context, ref model.PRRef) (*model.PRMetadata, error) {
	var meta *model.PRMetadata

	err := c.withRetry(ctx, fmt.Sprintf("get PR %s", ref.ID()), func(ctx context.Context) error {
		pr, resp, err := c.gh.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			if isNotFound(resp) {
				meta = nil
				return nil
			}
			return fmt.Errorf("get pull request %s: %w", ref.ID(), err)
		}
		meta = mapMetadata(pr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// FetchChangedFiles retrieves the filenames changed by the PR. A single page
// of up to 100 files is fetched; a 404 yields an empty list.
func (c *Client) FetchChangedFiles(ctx context.Context, ref model.PRRef) ([]string, error) {
	var names []string

	err := c.withRetry(ctx, fmt.Sprintf("list files %s", ref.ID()), func(ctx context.Context) error {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, ref.Owner, ref.Repo, ref.Number, &gh.ListOptions{
			PerPage: listPageSize,
		})
		if err != nil {
			if isNotFound(resp) {
				names = nil
				return nil
			}
			return fmt.Errorf("list changed files for %s: %w", ref.ID(), err)
		}

		names = make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.GetFilename())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// FetchReviewCount retrieves the number of reviews submitted on the PR.
// A single page of up to 100 reviews is counted; a 404 yields 0.
func (c *Client) FetchReviewCount(ctx context.Context, ref model.PRRef) (int, error) {
	var count int

	err := c.withRetry(ctx, fmt.Sprintf("list reviews %s", ref.ID()), func(ctx context.Context) error {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, ref.Owner, ref.Repo, ref.Number, &gh.ListOptions{
			PerPage: listPageSize,
		})
		if err != nil {
			if isNotFound(resp) {
				count = 0
				return nil
			}
			return fmt.Errorf("list reviews for %s: %w", ref.ID(), err)
		}
		count = len(reviews)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// withRetry executes op with exponential backoff, applying the per-request
// timeout to each attempt independently.
func (c *Client) withRetry(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	return retry.Do(
		func() error {
			opCtx := ctx
			if c.timeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}
			return op(opCtx)
		},
		retry.Context(ctx),
		retry.Attempts(maxFetchAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(initialFetchDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("github fetch retry", "operation", operation, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
}

func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// mapMetadata converts a go-github pull request to the domain metadata subset.
func mapMetadata(pr *gh.PullRequest) *model.PRMetadata {
	return &model.PRMetadata{
		Title:        pr.GetTitle(),
		Author:       pr.GetUser().GetLogin(),
		State:        pr.GetState(),
		HTMLURL:      pr.GetHTMLURL(),
		CreatedAt:    timestampString(pr.CreatedAt),
		UpdatedAt:    timestampString(pr.UpdatedAt),
		MergedAt:     timestampString(pr.MergedAt),
		Additions:    pr.Additions,
		Deletions:    pr.Deletions,
		ChangedFiles: pr.ChangedFiles,
		Draft:        pr.GetDraft(),
	}
}

// timestampString formats an API timestamp as an ISO-8601 string, preserving
// null for absent timestamps.
func timestampString(ts *gh.Timestamp) *string {
	if ts == nil || ts.IsZero() {
		return nil
	}
	s := ts.UTC().Format(time.RFC3339)
	return &s
}
