// Package httphandler is the HTTP driving adapter that serves the JSON API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/prtriage/internal/application"
	"github.com/ericfisherdev/prtriage/internal/domain/port/driven"
)

// Handler serves the triage REST API.
type Handler struct {
	triageSvc    *application.TriageService
	prStore      driven.PRStore
	defaultLimit int
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. defaultLimit
// bounds list endpoints when the request carries no limit parameter.
func NewHandler(triageSvc *application.TriageService, prStore driven.PRStore, defaultLimit int, logger *slog.Logger) *Handler {
	return &Handler{
		triageSvc:    triageSvc,
		prStore:      prStore,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/prs", h.ListPRs)
	mux.HandleFunc("GET /api/v1/prs/triage", h.Triage)
	mux.HandleFunc("POST /api/v1/prs", h.EnrichPR)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Triage returns the ranked, scored batch of recent pull requests with
// per-PR recommendations and the batch roadmap hint.
func (h *Handler) Triage(w http.ResponseWriter, r *http.Request) {
	limit := h.limitParam(r)
	repoFilter := r.URL.Query().Get("repo")

	result, err := h.triageSvc.Triage(r.Context(), limit, repoFilter)
	if err != nil {
		h.logger.Error("triage failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toTriageResponse(result))
}

// ListPRs returns raw recent pull request records without scores.
func (h *Handler) ListPRs(w http.ResponseWriter, r *http.Request) {
	limit := h.limitParam(r)
	repoFilter := r.URL.Query().Get("repo")

	prs, err := h.prStore.GetRecent(r.Context(), limit, repoFilter)
	if err != nil {
		h.logger.Error("failed to list PRs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]PRResponse, 0, len(prs))
	for _, pr := range prs {
		resp = append(resp, toPRResponse(pr))
	}

	writeJSON(w, http.StatusOK, resp)
}

// EnrichPR resolves an identifier, enriches the referenced pull request,
// stores it, and returns the scored record. A malformed identifier is the
// one client error this API reports from the core.
func (h *Handler) EnrichPR(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	item, err := h.triageSvc.EnrichOne(r.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, application.ErrMalformedIdentifier) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("enrich failed", "identifier", req.Identifier, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toTriageItemResponse(item))
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// limitParam parses the limit query parameter, falling back to the
// configured default for absent or unusable values.
func (h *Handler) limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.defaultLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return h.defaultLimit
	}
	return limit
}
