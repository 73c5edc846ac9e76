package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prtriage/internal/application"
	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// memStore is a minimal in-memory PRStore for handler tests.
type memStore struct {
	records []model.PullRequest
	links   int
}

func (m *memStore) Upsert(_ context.Context, pr model.PullRequest) error {
	for i, existing := range m.records {
		if existing.ID() == pr.ID() {
			m.records[i] = pr
			return nil
		}
	}
	m.records = append(m.records, pr)
	return nil
}

func (m *memStore) GetRecent(_ context.Context, limit int, repoFilter string) ([]model.PullRequest, error) {
	var out []model.PullRequest
	for _, pr := range m.records {
		if repoFilter != "" && pr.RepoFullName() != repoFilter {
			continue
		}
		out = append(out, pr)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Link(_ context.Context, _, _ string) error {
	m.links++
	return nil
}

func (m *memStore) Count(_ context.Context) (int, error) {
	return len(m.records), nil
}

type memRunSource struct {
	runs []model.Run
}

func (m *memRunSource) ListRunsWithPR(_ context.Context) ([]model.Run, error) {
	return m.runs, nil
}

type stubGitHub struct {
	meta  *model.PRMetadata
	files []string
}

func (s *stubGitHub) FetchPullRequest(_ context.Context, _ model.PRRef) (*model.PRMetadata, error) {
	return s.meta, nil
}

func (s *stubGitHub) FetchChangedFiles(_ context.Context, _ model.PRRef) ([]string, error) {
	return s.files, nil
}

func (s *stubGitHub) FetchReviewCount(_ context.Context, _ model.PRRef) (int, error) {
	return 0, nil
}

func newTestServer(t *testing.T, store *memStore, runs *memRunSource, gh *stubGitHub) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	svc := application.NewTriageService(
		store,
		runs,
		application.NewEnrichService(gh),
		application.NewScoringEngine(application.DefaultScoringConfig()),
	)
	handler := NewHandler(svc, store, 50, logger)

	srv := httptest.NewServer(NewServeMux(handler, logger))
	t.Cleanup(srv.Close)

	return srv
}

func seededStore(t *testing.T) *memStore {
	t.Helper()

	store := &memStore{}
	state := model.PRStateOpen
	title := "add widget"
	require.NoError(t, store.Upsert(context.Background(), model.PullRequest{
		Owner:    "acme",
		Repo:     "api",
		Number:   7,
		Title:    &title,
		State:    &state,
		HTMLURL:  "https://github.com/acme/api/pull/7",
		HasTests: true,
		CIStatus: model.CIStatusSuccess,
	}))
	return store
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &memStore{}, &memRunSource{}, &stubGitHub{})

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Time)
}

func TestTriageEndpoint(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &memRunSource{}, &stubGitHub{})

	resp, err := http.Get(srv.URL + "/api/v1/prs/triage")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var body TriageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "acme/api#7", body.Items[0].PR.ID)
	assert.NotNil(t, body.Items[0].Recommendations)
	assert.NotEmpty(t, body.RoadmapHint)
	assert.Nil(t, body.Backfill)
}

func TestTriageEndpoint_ColdStartReportsBackfill(t *testing.T) {
	runs := &memRunSource{runs: []model.Run{
		{ID: "run-1", PRURL: "acme/api#10"},
		{ID: "run-2", PRURL: "broken identifier"},
	}}
	gh := &stubGitHub{meta: &model.PRMetadata{Title: "seeded", State: "open"}}
	srv := newTestServer(t, &memStore{}, runs, gh)

	resp, err := http.Get(srv.URL + "/api/v1/prs/triage")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body TriageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Backfill)
	assert.Equal(t, []string{"acme/api#10"}, body.Backfill.Succeeded)
	require.Len(t, body.Backfill.Failed, 1)
	assert.Equal(t, "broken identifier", body.Backfill.Failed[0].Ref)
	require.Len(t, body.Items, 1)
}

func TestListPRs(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &memRunSource{}, &stubGitHub{})

	resp, err := http.Get(srv.URL + "/api/v1/prs")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []PRResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "acme/api#7", body[0].ID)
	require.NotNil(t, body[0].Title)
	assert.Equal(t, "add widget", *body[0].Title)
}

func TestListPRs_RepoFilterMiss(t *testing.T) {
	srv := newTestServer(t, seededStore(t), &memRunSource{}, &stubGitHub{})

	resp, err := http.Get(srv.URL + "/api/v1/prs?repo=nobody/nothing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []PRResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body)
}

func TestEnrichPR(t *testing.T) {
	store := &memStore{}
	gh := &stubGitHub{
		meta:  &model.PRMetadata{Title: "fix leak", State: "open"},
		files: []string{"leak.go", "leak_test.go"},
	}
	srv := newTestServer(t, store, &memRunSource{}, gh)

	resp, err := http.Post(srv.URL+"/api/v1/prs", "application/json",
		strings.NewReader(`{"identifier": "acme/api#42"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body TriageItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "acme/api#42", body.PR.ID)
	assert.True(t, body.PR.HasTests)
	require.Len(t, store.records, 1)
}

func TestEnrichPR_MalformedIdentifier(t *testing.T) {
	srv := newTestServer(t, &memStore{}, &memRunSource{}, &stubGitHub{})

	resp, err := http.Post(srv.URL+"/api/v1/prs", "application/json",
		strings.NewReader(`{"identifier": "not a pull request"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnrichPR_BadBody(t *testing.T) {
	srv := newTestServer(t, &memStore{}, &memRunSource{}, &stubGitHub{})

	for _, body := range []string{`{`, `{}`, `{"identifier": ""}`} {
		resp, err := http.Post(srv.URL+"/api/v1/prs", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &memStore{}, &memRunSource{}, &stubGitHub{})

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/prs", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
