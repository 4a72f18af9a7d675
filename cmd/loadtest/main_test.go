package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	lat := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(5), percentile(lat, 50))
	assert.Equal(t, time.Duration(9), percentile(lat, 90))
	assert.Equal(t, time.Duration(10), percentile(lat, 99))
	assert.Equal(t, time.Duration(1), percentile(lat, 0))
	assert.Zero(t, percentile(nil, 50))
}

func TestMeanStdDev(t *testing.T) {
	avg, sd := meanStdDev([]time.Duration{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, time.Duration(5), avg)
	assert.Equal(t, time.Duration(2), sd)
}

func TestStatsRecord(t *testing.T) {
	s := NewStats()
	suggestion := "india"
	s.Record(time.Millisecond, 200, &searchReply{Language: "en", Corrected: true, Suggestion: &suggestion, Results: []json.RawMessage{[]byte(`{}`)}}, nil)
	s.Record(time.Millisecond, 200, &searchReply{Language: "hi"}, nil)
	s.Record(time.Millisecond, 500, &searchReply{Language: "en"}, nil)
	s.Record(0, 0, nil, assert.AnError)

	assert.EqualValues(t, 4, s.total.Load())
	assert.EqualValues(t, 2, s.errors.Load())
	assert.EqualValues(t, 1, s.corrected.Load())
	assert.EqualValues(t, 2, s.zero.Load())
	assert.Equal(t, map[string]int64{"en": 2, "hi": 1}, s.byLanguage)
	assert.Equal(t, map[int]int64{200: 2, 500: 1}, s.statuses)
}

func TestLoadQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.txt")
	require.NoError(t, os.WriteFile(path, []byte("india\n\n  भारत  \n"), 0o644))
	q, err := loadQueries(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"india", "भारत"}, q)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = loadQueries(empty)
	assert.Error(t, err)
}

func TestRunAgainstStub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[],"suggestion":null,"language":"en","corrected":false}`))
	}))
	defer srv.Close()

	stats := run(srv.URL, []string{"india"}, 2, 100*time.Millisecond)
	assert.Positive(t, stats.total.Load())
	assert.Zero(t, stats.errors.Load())
	assert.Equal(t, stats.total.Load(), stats.zero.Load())
}
