package consumer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/builder"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/registry"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/engine"
	searchhandler "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/kafka"
)

var languages = []string{"en", "hi", "ta", "te"}

// loopback delivers published events straight to a consumer handler, the
// way the Kafka topic would.
type loopback struct {
	handle kafka.MessageHandler
}

func (l loopback) Publish(ctx context.Context, e kafka.Event) error {
	value, err := json.Marshal(e.Value)
	if err != nil {
		return err
	}
	return l.handle(ctx, []byte(e.Key), value)
}

func (loopback) Close() error { return nil }

// TestIngestRebuildSearch drives a batch through the ingestion API, lets the
// debounced scheduler rebuild the touched partitions, and queries them over
// the search API.
func TestIngestRebuildSearch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	root := t.TempDir()
	docs := store.NewMemory()
	b := builder.New(registry.New(root, analyzer.New()), 2, nil)

	rebuilt := make(chan []string, 4)
	scheduler := consumer.NewScheduler(func(ctx context.Context, langs []string) error {
		_, err := b.RebuildFromStore(ctx, docs, langs)
		rebuilt <- langs
		return err
	}, 200*time.Millisecond, languages)
	go scheduler.Run(ctx)

	pub := publisher.New(docs, loopback{handle: consumer.HandleMessage(scheduler)}, nil)
	ingest := httptest.NewServer(http.HandlerFunc(ingesthandler.New(pub, validator.New(languages)).Ingest))
	defer ingest.Close()

	batch := `{"documents":[
		{"title":"India Overview","url":"https://news.example/india","body":"Republic in south asia","language_code":"en"},
		{"title":"भारत अवलोकन","url":"https://news.example/bharat","body":"दक्षिण एशिया का देश","language_code":"hi"},
		{"title":"India Overview","url":"https://news.example/india","body":"again","language_code":"en"},
		{"title":"Paris","url":"https://news.example/paris","body":"","language_code":"fr"}
	]}`
	resp, err := http.Post(ingest.URL, "application/json", strings.NewReader(batch))
	require.NoError(t, err)
	var out struct {
		Stored, Duplicates, Rejected int
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, 2, out.Stored)
	assert.Equal(t, 1, out.Duplicates)
	assert.Equal(t, 1, out.Rejected)

	select {
	case langs := <-rebuilt:
		assert.Equal(t, []string{"en", "hi"}, langs)
	case <-ctx.Done():
		t.Fatal("rebuild never ran")
	}

	an := analyzer.New()
	eng := engine.New(registry.New(root, an), an, engine.Config{
		DefaultLanguage:    "en",
		SupportedLanguages: languages,
		MaxResults:         10,
		SnippetWords:       30,
	}, nil)
	search := httptest.NewServer(http.HandlerFunc(searchhandler.New(eng, nil, nil, nil).Search))
	defer search.Close()

	type result struct {
		Results []struct {
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"results"`
		Suggestion *string `json:"suggestion"`
		Language   string  `json:"language"`
	}
	query := func(q, lang string) result {
		t.Helper()
		v := url.Values{"q": {q}}
		if lang != "" {
			v.Set("lang", lang)
		}
		resp, err := http.Get(search.URL + "?" + v.Encode())
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var r result
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
		return r
	}

	r := query("india", "")
	require.Len(t, r.Results, 1)
	assert.Equal(t, "https://news.example/india", r.Results[0].URL)
	assert.Contains(t, r.Results[0].Snippet, "<b>India</b>")
	assert.Nil(t, r.Suggestion)

	r = query("indai", "")
	require.NotNil(t, r.Suggestion)
	assert.Equal(t, "india", *r.Suggestion)
	require.Len(t, r.Results, 1)

	r = query("भारत", "")
	assert.Equal(t, "hi", r.Language)
	require.Len(t, r.Results, 1)
	assert.Equal(t, "https://news.example/bharat", r.Results[0].URL)

	r = query("india", "hi")
	assert.Empty(t, r.Results)
	assert.Nil(t, r.Suggestion)

	r = query("chennai", "ta")
	assert.Empty(t, r.Results, "a language with no partition answers empty")
}
