package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobmate/match-service/internal/match"
	"jobmate/match-service/internal/model"
)

// fakeStore scripts the three store operations and records what was called.
type fakeStore struct {
	count     int
	countErr  error
	rows      []match.JobRow
	rowsErr   error
	fallbacks int
	vectors   int

	gotLimit  int
	gotOffset int
}

func (f *fakeStore) ProbeCount(_ context.Context, _ *match.PredicateSet, _ int) (int, error) {
	return f.count, f.countErr
}

func (f *fakeStore) Fallback(_ context.Context, _ *match.PredicateSet, limit int) ([]match.JobRow, error) {
	f.fallbacks++
	f.gotLimit = limit
	return f.rows, f.rowsErr
}

func (f *fakeStore) VectorSearch(_ context.Context, _ *match.PredicateSet, _ []float32, limit, offset int) ([]match.JobRow, error) {
	f.vectors++
	f.gotLimit = limit
	f.gotOffset = offset
	return f.rows, f.rowsErr
}

func newMatcher(store match.Store) *match.VectorMatcher {
	log := zap.NewNop()
	return match.NewVectorMatcher(store, match.NewValidator(log), log, 5, 6)
}

func matchReq() model.MatchRequest {
	return model.MatchRequest{
		ResumeID:  "resume-1",
		Embedding: []float32{0.1, 0.2, 0.3},
		Limit:     10,
		Offset:    20,
	}
}

// ── Adaptive threshold boundary ────────────────────────────────────────────

func TestMatcher_CountAtThresholdTakesFallback(t *testing.T) {
	store := &fakeStore{count: 5, rows: []match.JobRow{validRow("a")}}
	matcher := newMatcher(store)

	_, _, stage, err := matcher.Match(context.Background(), matchReq())
	require.NoError(t, err)

	assert.Equal(t, match.StageFallback, stage)
	assert.Equal(t, 1, store.fallbacks)
	assert.Equal(t, 0, store.vectors)
}

func TestMatcher_CountAboveThresholdTakesVectorSearch(t *testing.T) {
	store := &fakeStore{count: 6, rows: []match.JobRow{validRow("a")}}
	matcher := newMatcher(store)

	_, _, stage, err := matcher.Match(context.Background(), matchReq())
	require.NoError(t, err)

	assert.Equal(t, match.StageVectorSearch, stage)
	assert.Equal(t, 0, store.fallbacks)
	assert.Equal(t, 1, store.vectors)
}

// The fallback path honours limit but has no offset semantics; the vector
// path honours both.
func TestMatcher_Pagination(t *testing.T) {
	store := &fakeStore{count: 2}
	_, _, _, err := newMatcher(store).Match(context.Background(), matchReq())
	require.NoError(t, err)
	assert.Equal(t, 10, store.gotLimit)

	store = &fakeStore{count: 100}
	_, _, _, err = newMatcher(store).Match(context.Background(), matchReq())
	require.NoError(t, err)
	assert.Equal(t, 10, store.gotLimit)
	assert.Equal(t, 20, store.gotOffset)
}

// ── Validation stage ───────────────────────────────────────────────────────

func TestMatcher_RejectedRowsDroppedNotFatal(t *testing.T) {
	rows := []match.JobRow{
		validRow("a"),
		{"id": "b"}, // missing title
		validRow("c"),
	}
	store := &fakeStore{count: 100, rows: rows}

	matches, rejected, _, err := newMatcher(store).Match(context.Background(), matchReq())
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, 1, rejected)
}

func TestMatcher_AllRowsRejectedReturnsEmptyNotError(t *testing.T) {
	rows := []match.JobRow{{"id": "a"}, {"id": "b"}}
	store := &fakeStore{count: 100, rows: rows}

	matches, rejected, _, err := newMatcher(store).Match(context.Background(), matchReq())
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 2, rejected)
}

// ── Error propagation ──────────────────────────────────────────────────────

func TestMatcher_ProbeFailurePropagates(t *testing.T) {
	store := &fakeStore{countErr: match.ErrSearchUnavailable}

	_, _, _, err := newMatcher(store).Match(context.Background(), matchReq())
	assert.ErrorIs(t, err, match.ErrSearchUnavailable)
	assert.Equal(t, 0, store.fallbacks+store.vectors)
}

func TestMatcher_InvalidGeoFailsBeforeAnyQuery(t *testing.T) {
	store := &fakeStore{}
	req := matchReq()
	lat := 1.0
	req.Location = &model.LocationFilter{Lat: &lat}

	_, _, _, err := newMatcher(store).Match(context.Background(), req)
	require.Error(t, err)

	var ve *match.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, store.fallbacks+store.vectors, "no query may run after validation failure")
}

// ── Phrase boost on the ranked path ────────────────────────────────────────

func TestMatcher_PhraseMatchRankedAboveTokenMatch(t *testing.T) {
	phraseHit := validRow("phrase")
	phraseHit["title"] = "Frontend Developer"
	phraseHit["similarity"] = 0.80

	tokenHit := validRow("token")
	tokenHit["title"] = "Developer Advocate"
	tokenHit["similarity"] = 0.82

	store := &fakeStore{count: 100, rows: []match.JobRow{tokenHit, phraseHit}}
	req := matchReq()
	req.Keywords = []string{"frontend", "developer"}

	matches, _, _, err := newMatcher(store).Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "phrase", matches[0].ID, "full-phrase hit must outrank the higher raw score")
	assert.InDelta(t, 0.85, matches[0].Similarity, 1e-9)
	assert.InDelta(t, 0.82, matches[1].Similarity, 1e-9)
}
