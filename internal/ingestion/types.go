// Package ingestion defines the request/response types and Kafka event schemas
// used by the document ingestion pipeline.
package ingestion

import (
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
)

// EventDocumentStored is the Kafka event type emitted for every newly
// stored document.
const EventDocumentStored = "document.stored"

// MaxBatchSize bounds the documents accepted in one batch request.
const MaxBatchSize = 500

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
type IngestRequest struct {
	Title    string `json:"title" validate:"required,max=1024"`
	URL      string `json:"url" validate:"required,url,max=2048"`
	Body     string `json:"body" validate:"max=1048576"`
	Language string `json:"language_code" validate:"required,supported_language"`
}

// Normalize trims surrounding whitespace and lower-cases the language code.
func (r *IngestRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	r.Body = strings.TrimSpace(r.Body)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
}

func (r *IngestRequest) Document() document.Document {
	return document.Document{
		Title:    r.Title,
		URL:      r.URL,
		Body:     r.Body,
		Language: r.Language,
	}
}

// BatchRequest is the {"documents": [...]} form of the ingestion body.
type BatchRequest struct {
	Documents []IngestRequest `json:"documents"`
}

const (
	StatusStored    = "stored"
	StatusDuplicate = "duplicate"
	StatusRejected  = "rejected"
)

// IngestResponse is returned to the caller for each submitted document.
type IngestResponse struct {
	DocumentID int64             `json:"document_id,omitempty"`
	URL        string            `json:"url"`
	Language   string            `json:"language_code,omitempty"`
	Status     string            `json:"status"`
	Errors     map[string]string `json:"errors,omitempty"`
}

type BatchResponse struct {
	Stored     int              `json:"stored"`
	Duplicates int              `json:"duplicates"`
	Rejected   int              `json:"rejected"`
	Documents  []IngestResponse `json:"documents"`
}

// DocumentStoredEvent is the Kafka payload produced after a new document is
// persisted. The indexer only uses Language to schedule a rebuild.
type DocumentStoredEvent struct {
	EventID    string    `json:"event_id"`
	DocumentID int64     `json:"document_id"`
	URL        string    `json:"url"`
	Language   string    `json:"language_code"`
	StoredAt   time.Time `json:"stored_at"`
}
