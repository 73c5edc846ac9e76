package application

import (
	"math"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// ScoringConfig holds the tunable thresholds of the scoring engine.
type ScoringConfig struct {
	// HighChurnLines is the churn (additions + deletions) at which the churn
	// factor saturates.
	HighChurnLines int
}

// DefaultScoringConfig returns the default scoring thresholds.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{HighChurnLines: 500}
}

// ScoringEngine computes the ranking attention score and the qualitative
// dimension scores for a pull request record. Both computations are pure,
// coalesce missing inputs to defaults, and never fail.
type ScoringEngine struct {
	cfg ScoringConfig
}

// NewScoringEngine creates a ScoringEngine with the given thresholds. A zero
// or negative HighChurnLines falls back to the default.
func NewScoringEngine(cfg ScoringConfig) *ScoringEngine {
	if cfg.HighChurnLines <= 0 {
		cfg.HighChurnLines = DefaultScoringConfig().HighChurnLines
	}
	return &ScoringEngine{cfg: cfg}
}

// Score computes the 0-100 ranking attention score with its factor breakdown,
// and the qualitative dimension set, from a single record snapshot.
func (e *ScoringEngine) Score(pr model.PullRequest) (int, model.AttentionFactors, model.ScoreSet) {
	attention, factors := e.scoreAttention(pr)
	return attention, factors, scoreDimensions(pr)
}

// scoreAttention applies the additive factor model: each factor is computed
// independently, summed, and clamped to [0, 100].
func (e *ScoringEngine) scoreAttention(pr model.PullRequest) (int, model.AttentionFactors) {
	churn := pr.Churn()
	changedFiles := pr.ChangedFileCount()

	factors := model.AttentionFactors{
		Churn:         churn,
		ChangedFiles:  changedFiles,
		HasTests:      pr.HasTests,
		Draft:         pr.Draft,
		DocTouchRatio: pr.DocTouchRatio,
	}

	factors.ChurnFactor = int(math.Round(30 * clamp(float64(churn)/float64(e.cfg.HighChurnLines), 0, 1)))
	factors.FileSpreadFactor = int(math.Round(20 * clamp(float64(changedFiles)/20, 0, 1)))
	factors.CIFactor = ciFactor(pr.CIStatus)

	if !pr.HasTests {
		factors.MissingTestsFactor = 15
	}
	if pr.Draft {
		factors.DraftPenalty = -10
	}
	if pr.DocTouchRatio > 0.5 {
		factors.HeavyDocsPenalty = -5
	}

	sum := factors.ChurnFactor + factors.FileSpreadFactor + factors.CIFactor +
		factors.MissingTestsFactor + factors.DraftPenalty + factors.HeavyDocsPenalty

	return int(clamp(float64(sum), 0, 100)), factors
}

// ciFactor maps a CI status to its attention contribution. An unrecognized
// or empty status is treated as unknown.
func ciFactor(status model.CIStatus) int {
	switch status {
	case model.CIStatusFailure, model.CIStatusError:
		return 25
	case model.CIStatusCancelled, model.CIStatusPending, model.CIStatusInProgress:
		return 10
	case model.CIStatusSuccess, model.CIStatusNeutral:
		return 0
	default:
		return 5
	}
}

// scoreDimensions computes the nine qualitative dimensions. The eight quality
// dimensions are clamped to [0, 10]; the dimension-scale attention figure is
// clamped to [0, 100].
func scoreDimensions(pr model.PullRequest) model.ScoreSet {
	churn := float64(pr.Churn())
	changedFiles := float64(pr.ChangedFileCount())
	docRatio := pr.DocTouchRatio
	state := pr.StateOrOpen()

	sizePenalty := sizePenaltyFor(pr.Churn())

	testBonus := -1.0
	if pr.HasTests {
		testBonus = 1
	}

	stabilityBase := 5.0
	robustnessBase := 4.0
	if pr.HasTests {
		stabilityBase = 8
		robustnessBase = 6
	}
	if state == model.PRStateMerged {
		stabilityBase += 2
	}
	if pr.Draft {
		stabilityBase -= 2
	}
	if docRatio > 0.1 {
		robustnessBase++
	}

	scores := model.ScoreSet{
		CodeQuality: clamp10(9 - sizePenalty + testBonus),
		Verbosity:   clamp10(5 + 5*docRatio - churn/800),
		Efficiency:  clamp10(7 - churn/400),
		Stability:   clamp10(stabilityBase),
		Robustness:  clamp10(robustnessBase),
		CleanCode:   clamp10(7 - sizePenalty/2),
		Reusability: clamp10(6 + 2*docRatio - changedFiles/50),
		Ingenuity:   clamp10(5 + math.Min(3, 2*docRatio) - sizePenalty/3),
	}

	// Dimension-scale attention: a 0-100 risk figure feeding the recommender
	// and roadmap classifier, distinct from the ranking factor model.
	risk := 0.0
	if churn > 600 {
		risk += 30
	}
	if !pr.HasTests {
		risk += 20
	}
	if pr.Draft {
		risk += 10
	}
	if changedFiles > 30 {
		risk += 10
	}
	if state == model.PRStateOpen {
		risk += 15
	}
	scores.Attention = clamp(30+risk-10*docRatio, 0, 100)

	return scores
}

// sizePenaltyFor is the step function over churn shared by several dimensions.
func sizePenaltyFor(churn int) float64 {
	switch {
	case churn < 50:
		return 0
	case churn < 200:
		return 2
	case churn < 600:
		return 4
	default:
		return 6
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp10(v float64) float64 {
	return clamp(v, 0, 10)
}
