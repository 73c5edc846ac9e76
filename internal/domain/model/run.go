package model

// Run is an automation run record produced upstream. The triage core consumes
// runs read-only: when the PR store is empty, runs carrying a PR URL seed the
// cold-start backfill.
type Run struct {
	ID        string
	Title     *string
	Status    *string
	PRURL     string
	CreatedAt *string
	UpdatedAt *string
}

// RunPRLink associates a run with a pull request it referenced. Links are
// append-only provenance; inserting a duplicate pair is a no-op.
type RunPRLink struct {
	RunID string
	PRID  string
}
