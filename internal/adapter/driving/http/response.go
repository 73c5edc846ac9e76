package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/prtriage/internal/application"
	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// EnrichRequest is the JSON body for the enrich-by-identifier endpoint.
type EnrichRequest struct {
	Identifier string `json:"identifier"`
}

// PRResponse is the JSON representation of an enriched pull request record.
// Nullable fields mirror the record: a degraded enrichment leaves them null.
type PRResponse struct {
	ID            string  `json:"id"`
	Owner         string  `json:"owner"`
	Repo          string  `json:"repo"`
	Number        int     `json:"number"`
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	State         *string `json:"state"`
	HTMLURL       string  `json:"html_url"`
	CreatedAt     *string `json:"created_at"`
	UpdatedAt     *string `json:"updated_at"`
	MergedAt      *string `json:"merged_at"`
	Additions     *int    `json:"additions"`
	Deletions     *int    `json:"deletions"`
	ChangedFiles  *int    `json:"changed_files"`
	Draft         bool    `json:"draft"`
	HasTests      bool    `json:"has_tests"`
	ReviewCount   int     `json:"review_count"`
	CIStatus      string  `json:"ci_status"`
	DocTouchRatio float64 `json:"doc_touch_ratio"`
	DiffStats     *string `json:"diff_stats,omitempty"`
}

// ScoreSetResponse is the JSON representation of the qualitative dimensions.
type ScoreSetResponse struct {
	CodeQuality float64 `json:"code_quality"`
	Verbosity   float64 `json:"verbosity"`
	Efficiency  float64 `json:"efficiency"`
	Stability   float64 `json:"stability"`
	Robustness  float64 `json:"robustness"`
	CleanCode   float64 `json:"clean_code"`
	Reusability float64 `json:"reusability"`
	Ingenuity   float64 `json:"ingenuity"`
	Attention   float64 `json:"attention"`
}

// FactorsResponse is the JSON representation of the attention factor breakdown.
type FactorsResponse struct {
	ChurnFactor        int     `json:"churn_factor"`
	FileSpreadFactor   int     `json:"file_spread_factor"`
	CIFactor           int     `json:"ci_factor"`
	MissingTestsFactor int     `json:"missing_tests_factor"`
	DraftPenalty       int     `json:"draft_penalty"`
	HeavyDocsPenalty   int     `json:"heavy_docs_penalty"`
	Churn              int     `json:"churn"`
	ChangedFiles       int     `json:"changed_files"`
	HasTests           bool    `json:"has_tests"`
	Draft              bool    `json:"draft"`
	DocTouchRatio      float64 `json:"doc_touch_ratio"`
}

// TriageItemResponse is one ranked entry of a triage batch.
type TriageItemResponse struct {
	PR              PRResponse       `json:"pr"`
	Attention       int              `json:"attention"`
	Factors         FactorsResponse  `json:"factors"`
	Scores          ScoreSetResponse `json:"scores"`
	Recommendations []string         `json:"recommendations"`
}

// BackfillFailureResponse is one failed backfill reference with its reason.
type BackfillFailureResponse struct {
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// BackfillReportResponse summarizes a cold-start backfill pass.
type BackfillReportResponse struct {
	Succeeded []string                  `json:"succeeded"`
	Failed    []BackfillFailureResponse `json:"failed"`
	Linked    int                       `json:"linked"`
}

// TriageResponse is the full triage batch payload.
type TriageResponse struct {
	Items       []TriageItemResponse    `json:"items"`
	RoadmapHint string                  `json:"roadmap_hint"`
	Backfill    *BackfillReportResponse `json:"backfill,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toPRResponse converts a domain record to its JSON response representation.
func toPRResponse(pr model.PullRequest) PRResponse {
	var state *string
	if pr.State != nil {
		s := string(*pr.State)
		state = &s
	}

	return PRResponse{
		ID:            pr.ID(),
		Owner:         pr.Owner,
		Repo:          pr.Repo,
		Number:        pr.Number,
		Title:         pr.Title,
		Author:        pr.Author,
		State:         state,
		HTMLURL:       pr.HTMLURL,
		CreatedAt:     pr.CreatedAt,
		UpdatedAt:     pr.UpdatedAt,
		MergedAt:      pr.MergedAt,
		Additions:     pr.Additions,
		Deletions:     pr.Deletions,
		ChangedFiles:  pr.ChangedFiles,
		Draft:         pr.Draft,
		HasTests:      pr.HasTests,
		ReviewCount:   pr.ReviewCount,
		CIStatus:      string(pr.CIStatus),
		DocTouchRatio: pr.DocTouchRatio,
		DiffStats:     pr.DiffStats,
	}
}

// toTriageItemResponse converts a scored item to its JSON representation.
func toTriageItemResponse(item application.TriageItem) TriageItemResponse {
	recs := item.Recommendations
	if recs == nil {
		recs = []string{}
	}

	return TriageItemResponse{
		PR:        toPRResponse(item.PR),
		Attention: item.Attention,
		Factors: FactorsResponse{
			ChurnFactor:        item.Factors.ChurnFactor,
			FileSpreadFactor:   item.Factors.FileSpreadFactor,
			CIFactor:           item.Factors.CIFactor,
			MissingTestsFactor: item.Factors.MissingTestsFactor,
			DraftPenalty:       item.Factors.DraftPenalty,
			HeavyDocsPenalty:   item.Factors.HeavyDocsPenalty,
			Churn:              item.Factors.Churn,
			ChangedFiles:       item.Factors.ChangedFiles,
			HasTests:           item.Factors.HasTests,
			Draft:              item.Factors.Draft,
			DocTouchRatio:      item.Factors.DocTouchRatio,
		},
		Scores: ScoreSetResponse{
			CodeQuality: item.Scores.CodeQuality,
			Verbosity:   item.Scores.Verbosity,
			Efficiency:  item.Scores.Efficiency,
			Stability:   item.Scores.Stability,
			Robustness:  item.Scores.Robustness,
			CleanCode:   item.Scores.CleanCode,
			Reusability: item.Scores.Reusability,
			Ingenuity:   item.Scores.Ingenuity,
			Attention:   item.Scores.Attention,
		},
		Recommendations: recs,
	}
}

// toTriageResponse converts a triage result to its JSON representation.
func toTriageResponse(result application.TriageResult) TriageResponse {
	items := make([]TriageItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toTriageItemResponse(item))
	}

	resp := TriageResponse{
		Items:       items,
		RoadmapHint: result.RoadmapHint,
	}

	if result.Backfill != nil {
		report := BackfillReportResponse{
			Succeeded: result.Backfill.Succeeded,
			Failed:    make([]BackfillFailureResponse, 0, len(result.Backfill.Failed)),
			Linked:    result.Backfill.Linked,
		}
		if report.Succeeded == nil {
			report.Succeeded = []string{}
		}
		for _, f := range result.Backfill.Failed {
			report.Failed = append(report.Failed, BackfillFailureResponse{Ref: f.Ref, Reason: f.Reason})
		}
		resp.Backfill = &report
	}

	return resp
}
