package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/engine"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
)

type stubSearcher struct {
	mu   sync.Mutex
	reqs []engine.Request
	resp *engine.Response
}

func (s *stubSearcher) Search(_ context.Context, req engine.Request) *engine.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if req.Text == "" || req.Text == "   " {
		return &engine.Response{Results: []engine.Result{}, Outcome: engine.Outcome{Kind: engine.OutcomeEmptyQuery}}
	}
	return s.resp
}

type recordingTracker struct {
	queries []string
}

func (r *recordingTracker) Track(q string) { r.queries = append(r.queries, q) }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSearchReturnsResults(t *testing.T) {
	s := &stubSearcher{resp: &engine.Response{
		Results: []engine.Result{{Title: "India Overview", URL: "u1", Snippet: "<b>India</b> Overview", Score: 0.3}},
		Outcome: engine.Outcome{Kind: engine.OutcomeHit, Language: "en"},
	}}
	tracker := &recordingTracker{}
	h := New(s, nil, tracker, nil)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=india&lang=EN", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "u1", results[0].(map[string]any)["url"])
	assert.Nil(t, body["suggestion"])
	assert.Equal(t, "en", body["language"])
	assert.Contains(t, body, "took_ms")

	assert.Equal(t, []engine.Request{{Text: "india", LanguageOverride: "en"}}, s.reqs)
	assert.Equal(t, []string{"india"}, tracker.queries)
}

func TestSearchEmptyQuery(t *testing.T) {
	s := &stubSearcher{}
	tracker := &recordingTracker{}
	h := New(s, nil, tracker, nil)

	for _, url := range []string{"/api/v1/search", "/api/v1/search?q=%20%20%20"} {
		rec := httptest.NewRecorder()
		h.Search(rec, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"results":[],"suggestion":null}`, rec.Body.String())
	}
	assert.Empty(t, tracker.queries, "empty queries are not logged")
}

func TestSearchSuggestion(t *testing.T) {
	suggestion := "india"
	s := &stubSearcher{resp: &engine.Response{
		Results:    []engine.Result{{Title: "India Overview", URL: "u1"}},
		Suggestion: &suggestion,
		Outcome:    engine.Outcome{Kind: engine.OutcomeCorrected, Language: "en", Corrected: true},
	}}
	rec := httptest.NewRecorder()
	New(s, nil, nil, nil).Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=indai", nil))

	body := decode(t, rec)
	assert.Equal(t, "india", body["suggestion"])
	assert.Equal(t, true, body["corrected"])
}

func TestSearchCorruptPartitionIs500WithEmptyResults(t *testing.T) {
	s := &stubSearcher{resp: &engine.Response{
		Results: []engine.Result{},
		Outcome: engine.Outcome{Kind: engine.OutcomePartitionCorrupt, Language: "en", Err: apperrors.ErrPartitionCorrupt},
	}}
	rec := httptest.NewRecorder()
	New(s, nil, nil, nil).Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=india", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Empty(t, body["results"])
}

func TestSearchUnexpectedFailure(t *testing.T) {
	s := &stubSearcher{resp: &engine.Response{
		Results: []engine.Result{},
		Outcome: engine.Outcome{Kind: engine.OutcomeError, Err: errors.New("boom")},
	}}
	rec := httptest.NewRecorder()
	New(s, nil, nil, nil).Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=india", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCacheEndpointsWhenDisabled(t *testing.T) {
	h := New(&stubSearcher{}, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
