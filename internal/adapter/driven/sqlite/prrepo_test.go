package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

func samplePR(number int) model.PullRequest {
	state := model.PRStateOpen
	return model.PullRequest{
		Owner:         "acme",
		Repo:          "api",
		Number:        number,
		Title:         strPtr(fmt.Sprintf("change %d", number)),
		Author:        strPtr("octocat"),
		State:         &state,
		HTMLURL:       fmt.Sprintf("https://github.com/acme/api/pull/%d", number),
		CreatedAt:     strPtr("2026-01-10T09:00:00Z"),
		UpdatedAt:     strPtr("2026-01-12T10:30:00Z"),
		Additions:     intPtr(120),
		Deletions:     intPtr(30),
		ChangedFiles:  intPtr(4),
		Draft:         false,
		HasTests:      true,
		ReviewCount:   2,
		CIStatus:      model.CIStatusSuccess,
		DocTouchRatio: 0.25,
		DiffStats:     strPtr(`{"files":4}`),
	}
}

func TestPRRepo_UpsertRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	want := samplePR(7)
	require.NoError(t, repo.Upsert(ctx, want))

	got, err := repo.GetRecent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestPRRepo_UpsertNullFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	want := model.PullRequest{
		Owner:    "acme",
		Repo:     "api",
		Number:   9,
		HTMLURL:  "https://github.com/acme/api/pull/9",
		CIStatus: model.CIStatusUnknown,
	}
	require.NoError(t, repo.Upsert(ctx, want))

	got, err := repo.GetRecent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Title)
	assert.Nil(t, got[0].State)
	assert.Nil(t, got[0].CreatedAt)
	assert.Nil(t, got[0].Additions)
	assert.Nil(t, got[0].DiffStats)
	assert.Equal(t, want, got[0])
}

func TestPRRepo_UpsertReplacesAllFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	first := samplePR(7)
	require.NoError(t, repo.Upsert(ctx, first))

	second := samplePR(7)
	second.Title = strPtr("retitled")
	second.State = nil
	second.Additions = intPtr(999)
	second.HasTests = false
	second.CIStatus = model.CIStatusFailure
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.GetRecent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second, got[0])

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPRRepo_GetRecentOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	oldest := samplePR(1)
	oldest.UpdatedAt = strPtr("2026-01-01T00:00:00Z")

	newest := samplePR(2)
	newest.UpdatedAt = strPtr("2026-03-01T00:00:00Z")

	// Null updated_at falls back to created_at.
	createdOnly := samplePR(3)
	createdOnly.UpdatedAt = nil
	createdOnly.CreatedAt = strPtr("2026-02-01T00:00:00Z")

	for _, pr := range []model.PullRequest{oldest, newest, createdOnly} {
		require.NoError(t, repo.Upsert(ctx, pr))
	}

	got, err := repo.GetRecent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Number)
	assert.Equal(t, 3, got[1].Number)
	assert.Equal(t, 1, got[2].Number)
}

func TestPRRepo_GetRecentTieBreakByInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	for _, n := range []int{5, 3, 8} {
		pr := samplePR(n)
		pr.UpdatedAt = strPtr("2026-01-12T10:30:00Z")
		require.NoError(t, repo.Upsert(ctx, pr))
	}

	// Re-upserting the first record keeps its position: rowid survives the
	// conflict update.
	refetched := samplePR(5)
	refetched.UpdatedAt = strPtr("2026-01-12T10:30:00Z")
	require.NoError(t, repo.Upsert(ctx, refetched))

	got, err := repo.GetRecent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 5, got[0].Number)
	assert.Equal(t, 3, got[1].Number)
	assert.Equal(t, 8, got[2].Number)
}

func TestPRRepo_GetRecentLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	for n := 1; n <= 5; n++ {
		pr := samplePR(n)
		pr.UpdatedAt = strPtr(fmt.Sprintf("2026-01-%02dT00:00:00Z", n))
		require.NoError(t, repo.Upsert(ctx, pr))
	}

	got, err := repo.GetRecent(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Number)
	assert.Equal(t, 4, got[1].Number)
}

func TestPRRepo_GetRecentRepoFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, samplePR(1)))

	other := samplePR(2)
	other.Owner = "beta"
	other.Repo = "web"
	require.NoError(t, repo.Upsert(ctx, other))

	got, err := repo.GetRecent(ctx, 10, "beta/web")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "beta/web#2", got[0].ID())

	got, err = repo.GetRecent(ctx, 10, "nobody/nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPRRepo_LinkIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, samplePR(7)))

	require.NoError(t, repo.Link(ctx, "run-1", "acme/api#7"))
	require.NoError(t, repo.Link(ctx, "run-1", "acme/api#7"))
	require.NoError(t, repo.Link(ctx, "run-2", "acme/api#7"))

	count, err := repo.CountLinks(ctx, "acme/api#7")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPRRepo_CountEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRRepo(db)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
