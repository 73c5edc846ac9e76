package model

// BackfillFailure records one PR reference that could not be backfilled,
// with a human-readable reason.
type BackfillFailure struct {
	Ref    string
	Reason string
}

// BackfillReport aggregates per-item outcomes of a cold-start backfill pass.
// Failures are reported rather than silently discarded; a failed item never
// aborts the rest of the pass.
type BackfillReport struct {
	Succeeded []string
	Failed    []BackfillFailure
	Linked    int
}

// HasFailures returns true if any reference failed to resolve, enrich, or write.
func (r BackfillReport) HasFailures() bool {
	return len(r.Failed) > 0
}
