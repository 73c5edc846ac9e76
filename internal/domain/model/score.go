package model

// ScoreSet holds the qualitative dimension scores for a pull request. Each
// dimension is on a 0-10 scale except Attention, which is a dimension-scale
// risk figure on 0-100 consumed by the recommender and roadmap classifier.
//
// ScoreSet is computed fresh on every scoring pass and never persisted; its
// inputs may be stale the moment scores are read.
//
// Note: ScoreSet.Attention is deliberately distinct from the integer ranking
// attention score produced alongside AttentionFactors. The two models serve
// different consumers (recommendation rationale vs. ranking) and are never
// cross-normalized.
type ScoreSet struct {
	CodeQuality float64
	Verbosity   float64
	Efficiency  float64
	Stability   float64
	Robustness  float64
	CleanCode   float64
	Reusability float64
	Ingenuity   float64
	Attention   float64
}

// AttentionFactors is the explainability breakdown of the 0-100 ranking
// attention score: each additive factor, plus the raw inputs they were
// computed from. The breakdown is a required output of every scoring pass,
// not incidental logging.
type AttentionFactors struct {
	ChurnFactor        int
	FileSpreadFactor   int
	CIFactor           int
	MissingTestsFactor int
	DraftPenalty       int
	HeavyDocsPenalty   int

	Churn         int
	ChangedFiles  int
	HasTests      bool
	Draft         bool
	DocTouchRatio float64
}
