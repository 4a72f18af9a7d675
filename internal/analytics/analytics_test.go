package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestTrendingCountsAndOrders(t *testing.T) {
	path := writeLog(t, "india", "kerala", "india", "", "  goa  ", "kerala", "india", "goa", "tamil")
	got, err := Trending(path, 3)
	require.NoError(t, err)
	assert.Equal(t, []QueryCount{
		{Query: "india", Count: 3},
		{Query: "kerala", Count: 2},
		{Query: "goa", Count: 2},
	}, got)
}

func TestTrendingDefaultsToFive(t *testing.T) {
	path := writeLog(t, "a", "b", "c", "d", "e", "f", "g")
	got, err := Trending(path, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultTrending)
}

func TestTrendingMissingLog(t *testing.T) {
	got, err := Trending(filepath.Join(t.TempDir(), "nope.txt"), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueryLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "queries.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0o644))

	ql := NewQueryLog(path, 16)
	require.NoError(t, ql.Start())
	ql.Track("india")
	ql.Track("  ")
	ql.Track("tamil\nnadu")
	ql.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier\nindia\ntamil nadu\n", string(data))
}

func TestQueryLogTrackAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	ql := NewQueryLog(path, 4)
	require.NoError(t, ql.Start())
	ql.Track("india")
	ql.Close()

	assert.NotPanics(t, func() {
		ql.Track("kerala")
		ql.Close()
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "india\n", string(data))
}

func TestQueryLogCloseWithoutStart(t *testing.T) {
	ql := NewQueryLog(filepath.Join(t.TempDir(), "queries.txt"), 4)
	assert.NotPanics(t, ql.Close)
}

func TestQueryLogCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "queries.txt")
	ql := NewQueryLog(path, 4)
	require.NoError(t, ql.Start())
	ql.Track("india")
	ql.Close()

	got, err := Trending(path, 5)
	require.NoError(t, err)
	assert.Equal(t, []QueryCount{{Query: "india", Count: 1}}, got)
}

func TestTrendingHandler(t *testing.T) {
	h := NewHandler(writeLog(t, "india", "india", "goa"), 5)

	rec := httptest.NewRecorder()
	h.Trending(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trending?n=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Queries []QueryCount `json:"queries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []QueryCount{{Query: "india", Count: 2}}, body.Queries)

	rec = httptest.NewRecorder()
	h.Trending(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trending?n=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
