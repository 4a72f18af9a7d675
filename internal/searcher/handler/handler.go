package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/tracing"
)

type Searcher interface {
	Search(ctx context.Context, req engine.Request) *engine.Response
}

// QueryTracker receives every non-empty query that was served.
type QueryTracker interface {
	Track(query string)
}

type searchResponse struct {
	Results    []engine.Result `json:"results"`
	Suggestion *string         `json:"suggestion"`
	Language   string          `json:"language"`
	Corrected  bool            `json:"corrected"`
	TookMs     int64           `json:"took_ms"`
}

type Handler struct {
	searcher Searcher
	cache    *cache.QueryCache
	tracker  QueryTracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New wires the search endpoints. queryCache, tracker and m may be nil.
func New(searcher Searcher, queryCache *cache.QueryCache, tracker QueryTracker, m *metrics.Metrics) *Handler {
	return &Handler{
		searcher: searcher,
		cache:    queryCache,
		tracker:  tracker,
		metrics:  m,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Search serves GET /api/v1/search?q=<text>&lang=<override>.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	req := engine.Request{
		Text:             r.URL.Query().Get("q"),
		LanguageOverride: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang"))),
	}
	if strings.TrimSpace(req.Text) == "" {
		h.writeJSON(w, http.StatusOK, h.searcher.Search(ctx, req))
		return
	}

	ctx, span := tracing.StartSpan(ctx, "search", logger.RequestID(ctx))
	defer func() {
		span.End()
		span.Log(ctx, log)
	}()

	var resp *engine.Response
	cacheStatus := "disabled"
	if h.cache != nil {
		var cached bool
		resp, cached = h.cache.GetOrCompute(ctx, req, func() *engine.Response {
			return h.searcher.Search(ctx, req)
		})
		cacheStatus = "miss"
		if cached {
			cacheStatus = "hit"
		}
	} else {
		resp = h.searcher.Search(ctx, req)
	}

	span.SetAttr("cache", cacheStatus)
	took := time.Since(start)
	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(took.Seconds())
	}
	if h.tracker != nil {
		h.tracker.Track(req.Text)
	}

	status := http.StatusOK
	if resp.Outcome.Err != nil {
		status = http.StatusInternalServerError
		log.Error("search failed",
			"query", req.Text,
			"language", resp.Outcome.Language,
			"outcome", resp.Outcome.Kind,
			"error", resp.Outcome.Err,
		)
	} else {
		log.Info("search completed",
			"query", req.Text,
			"language", resp.Outcome.Language,
			"language_fallback", resp.Outcome.LanguageFallback,
			"outcome", resp.Outcome.Kind,
			"returned", len(resp.Results),
			"cache", cacheStatus,
			"latency_ms", took.Milliseconds(),
		)
	}

	h.writeJSON(w, status, searchResponse{
		Results:    resp.Results,
		Suggestion: resp.Suggestion,
		Language:   resp.Outcome.Language,
		Corrected:  resp.Outcome.Corrected,
		TookMs:     took.Milliseconds(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"breaker":  h.cache.BreakerState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
