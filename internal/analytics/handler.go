package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// MaxTrending caps the n query parameter.
const MaxTrending = 100

type Handler struct {
	path       string
	defaultTop int
	logger     *slog.Logger
}

func NewHandler(path string, defaultTop int) *Handler {
	if defaultTop <= 0 {
		defaultTop = DefaultTrending
	}
	return &Handler{
		path:       path,
		defaultTop: defaultTop,
		logger:     slog.Default().With("component", "trending-handler"),
	}
}

// Trending serves GET /api/v1/trending?n=<count>.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	n := h.defaultTop
	if s := r.URL.Query().Get("n"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "n must be a positive integer"})
			return
		}
		n = min(parsed, MaxTrending)
	}
	queries, err := Trending(h.path, n)
	if err != nil {
		h.logger.Error("reading trending queries failed", "error", err)
		queries = []QueryCount{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"queries": queries})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write trending response", "error", err)
	}
}
