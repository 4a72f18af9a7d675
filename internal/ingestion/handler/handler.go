package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/logger"
)

const maxBodyBytes = 16 << 20

type Ingester interface {
	Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error)
}

type Handler struct {
	publisher Ingester
	validator *validator.Validator
	logger    *slog.Logger
}

func New(pub Ingester, v *validator.Validator) *Handler {
	return &Handler{
		publisher: pub,
		validator: v,
		logger:    slog.Default().With("component", "ingestion-handler"),
	}
}

// Ingest serves POST /api/v1/documents. The body is either one document or
// {"documents": [...]}; in batch mode invalid documents are rejected
// individually and the rest are still stored.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, ok := probe["documents"]; ok {
		h.ingestBatch(w, r, raw)
		return
	}

	var req ingestion.IngestRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validator.ValidateIngestRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.publisher.Ingest(ctx, &req)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("ingestion failed", "url", req.URL, "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, "ingestion failed")
		return
	}
	log.Info("document ingested",
		"doc_id", resp.DocumentID,
		"language", resp.Language,
		"status", resp.Status,
	)
	status := http.StatusCreated
	if resp.Status == ingestion.StatusDuplicate {
		status = http.StatusOK
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request, raw []byte) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var batch ingestion.BatchRequest
	if err := json.Unmarshal(raw, &batch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(batch.Documents) == 0 {
		h.writeError(w, http.StatusBadRequest, "documents must not be empty")
		return
	}
	if len(batch.Documents) > ingestion.MaxBatchSize {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d documents per batch", ingestion.MaxBatchSize))
		return
	}

	out := ingestion.BatchResponse{Documents: make([]ingestion.IngestResponse, 0, len(batch.Documents))}
	for i := range batch.Documents {
		req := &batch.Documents[i]
		if err := h.validator.ValidateIngestRequest(req); err != nil {
			item := ingestion.IngestResponse{URL: req.URL, Status: ingestion.StatusRejected}
			var validationErr *validator.ValidationError
			if errors.As(err, &validationErr) {
				item.Errors = validationErr.Fields
			} else {
				item.Errors = map[string]string{"document": err.Error()}
			}
			out.Rejected++
			out.Documents = append(out.Documents, item)
			continue
		}
		resp, err := h.publisher.Ingest(ctx, req)
		if err != nil {
			log.Error("batch ingestion failed", "url", req.URL, "error", err)
			h.writeError(w, apperrors.HTTPStatusCode(err), "ingestion failed")
			return
		}
		if resp.Status == ingestion.StatusDuplicate {
			out.Duplicates++
		} else {
			out.Stored++
		}
		out.Documents = append(out.Documents, *resp)
	}
	log.Info("batch ingested",
		"stored", out.Stored,
		"duplicates", out.Duplicates,
		"rejected", out.Rejected,
	)
	h.writeJSON(w, http.StatusOK, out)
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
