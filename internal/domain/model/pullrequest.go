package model

import "fmt"

// PRRef identifies a pull request by owner, repository, and number.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

// ID returns the canonical record key, "owner/repo#number".
func (r PRRef) ID() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// PullRequest is an enriched pull request record cached by the triage store.
// Descriptive fields are pointers because enrichment degrades gracefully:
// when the upstream fetch yields nothing, the record is still built with
// those fields null rather than failing the batch.
//
// Timestamps are carried as ISO-8601 strings end to end. The core never does
// date arithmetic on them; it only orders records via COALESCE in SQL, and
// keeping the upstream strings untouched preserves exact round-trips.
type PullRequest struct {
	Owner  string
	Repo   string
	Number int

	Title   *string
	Author  *string
	State   *PRState
	HTMLURL string

	CreatedAt *string
	UpdatedAt *string
	MergedAt  *string

	Additions    *int
	Deletions    *int
	ChangedFiles *int

	Draft       bool
	HasTests    bool
	ReviewCount int
	CIStatus    CIStatus

	// DocTouchRatio is the fraction of changed files matching the
	// documentation-path heuristic, in [0, 1].
	DocTouchRatio float64

	// DiffStats is an opaque serialized blob carried through unchanged.
	DiffStats *string
}

// ID returns the record key, "owner/repo#number". It is the sole upsert
// conflict key; every other field is fully replaced on each write.
func (pr PullRequest) ID() string {
	return PRRef{Owner: pr.Owner, Repo: pr.Repo, Number: pr.Number}.ID()
}

// RepoFullName returns "owner/repo".
func (pr PullRequest) RepoFullName() string {
	return pr.Owner + "/" + pr.Repo
}

// Churn returns additions plus deletions, with null size fields counted as 0.
func (pr PullRequest) Churn() int {
	return intOrZero(pr.Additions) + intOrZero(pr.Deletions)
}

// ChangedFileCount returns the changed-file count, with null counted as 0.
func (pr PullRequest) ChangedFileCount() int {
	return intOrZero(pr.ChangedFiles)
}

// StateOrOpen returns the PR state, coalescing a null state to open so that
// scoring never has to branch on missing data.
func (pr PullRequest) StateOrOpen() PRState {
	if pr.State == nil {
		return PRStateOpen
	}
	return *pr.State
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// PRMetadata is the upstream pull request object subset consumed by
// enrichment. A nil *PRMetadata from the fetch port means the upstream had
// nothing for the item; enrichment then builds a degraded record.
type PRMetadata struct {
	Title     string
	Author    string
	State     string // "open" or "closed" as reported by the API.
	HTMLURL   string
	CreatedAt *string
	UpdatedAt *string
	MergedAt  *string

	Additions    *int
	Deletions    *int
	ChangedFiles *int

	Draft bool
}
