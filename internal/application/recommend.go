package application

import "github.com/ericfisherdev/prtriage/internal/domain/model"

// Next-step recommendation catalog. Triggers pick from these fixed strings;
// the list a PR receives is capped at three, deduplicated, order-preserving.
const (
	recTestsMissing = "Add/extend unit tests targeting new logic and edge cases; gate with CI."
	recDocsLow      = "Augment README/inline docs; explain rationale and trade-offs."
	recTooLarge     = "Split PR into cohesive commits/modules; isolate refactors from logic changes."
	recNeedsReview  = "Request review from owner of touched module; add checklists."
	recPerfRisk     = "Benchmark hotspots; add micro-bench or profiling notes."
)

// maxRecommendations caps how many suggestions a single PR receives.
const maxRecommendations = 3

// Recommendations derives up to three next-step suggestions for a PR from its
// dimension scores. Triggers are evaluated in fixed order and collection
// stops once three unique suggestions are gathered; later duplicates are
// dropped, never reordered.
func Recommendations(scores model.ScoreSet, hasTests bool) []string {
	var candidates []string

	if scores.Stability < 6 || !hasTests {
		candidates = append(candidates, recTestsMissing)
	}
	if scores.Verbosity < 5 {
		candidates = append(candidates, recDocsLow)
	}
	if scores.CleanCode < 6 {
		candidates = append(candidates, recTooLarge)
	}
	if scores.Attention > 60 {
		candidates = append(candidates, recNeedsReview)
	}
	if scores.Efficiency < 5 {
		candidates = append(candidates, recPerfRisk)
	}

	seen := make(map[string]struct{}, len(candidates))
	recs := make([]string, 0, maxRecommendations)
	for _, r := range candidates {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		recs = append(recs, r)
		if len(recs) == maxRecommendations {
			break
		}
	}

	return recs
}

// Roadmap hint strings, one per batch classification plus the empty-batch
// bootstrap and the no-issues steady state.
const (
	hintBootstrap  = "No data yet."
	hintDocsSprint = "Prioritize a documentation and testing sprint; enforce PR size guardrails and module ownership."
	hintGuardrails = "Enforce PR size guardrails; require risk checklists on high-attention changes."
	hintDocs       = "Invest in better documentation and rationale sections in PRs; adopt a docs checklist."
	hintTesting    = "Schedule a testing push; add CI gates requiring targeted unit tests on changed modules."
	hintPerf       = "Add performance budgets and basic benchmarks for hotspots; profile critical paths."
	hintSteady     = "Steady state; continue current review process and incremental improvements."
)

// RoadmapHint classifies a scored batch into a single actionable hint.
// Conditions are counted across the batch and compared against
// max(2, total/k) with a per-condition divisor (3 for attention, 4 for the
// rest). Rules fire in a fixed priority order; only the first match wins,
// even when several conditions hold. An empty batch yields the bootstrap
// message directing the operator to populate source data.
func RoadmapHint(items []TriageItem) string {
	if len(items) == 0 {
		return hintBootstrap
	}

	total := len(items)
	var attnHigh, lowDocs, lowTests, perfRisk int
	for _, it := range items {
		if it.Scores.Attention > 70 {
			attnHigh++
		}
		if it.Scores.Verbosity < 5 {
			lowDocs++
		}
		if !it.PR.HasTests {
			lowTests++
		}
		if it.Scores.Efficiency < 5 {
			perfRisk++
		}
	}

	attnThreshold := max(2, total/3)
	otherThreshold := max(2, total/4)

	switch {
	case attnHigh >= attnThreshold && lowDocs >= otherThreshold:
		return hintDocsSprint
	case attnHigh >= attnThreshold:
		return hintGuardrails
	case lowDocs >= otherThreshold:
		return hintDocs
	case lowTests >= otherThreshold:
		return hintTesting
	case perfRisk >= otherThreshold:
		return hintPerf
	default:
		return hintSteady
	}
}
