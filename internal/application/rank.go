package application

import (
	"sort"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// TriageItem is one scored entry of a triage batch: the record snapshot, the
// ranking attention score with its factor breakdown, the qualitative
// dimension scores, and the derived recommendations.
type TriageItem struct {
	PR              model.PullRequest
	Attention       int
	Factors         model.AttentionFactors
	Scores          model.ScoreSet
	Recommendations []string
}

// Rank orders items by attention score descending, in place. The sort is
// stable on purpose: equal scores keep their input order so repeated calls
// on unchanged input produce identical output.
func Rank(items []TriageItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Attention > items[j].Attention
	})
}
