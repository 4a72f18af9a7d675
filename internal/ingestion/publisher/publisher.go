// Package publisher persists documents in the URL-deduplicated store and
// announces newly stored ones on Kafka so the indexer can schedule a
// rebuild of their language partition.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
)

// Publisher coordinates document persistence and Kafka event production.
type Publisher struct {
	store    store.Store
	producer kafka.Publisher
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Publisher. producer and m may be nil; without a producer
// documents are stored but no event is emitted.
func New(s store.Store, producer kafka.Publisher, m *metrics.Metrics) *Publisher {
	return &Publisher{
		store:    s,
		producer: producer,
		metrics:  m,
		now:      time.Now,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Ingest stores a validated request. A URL that is already stored is
// reported with StatusDuplicate and emits nothing. A failed publish is
// logged but does not fail the ingest: the document is durable and the
// next rebuild will pick it up.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	stored, inserted, err := p.store.Insert(ctx, req.Document())
	if err != nil {
		p.record("error")
		return nil, fmt.Errorf("inserting document: %w", err)
	}
	resp := &ingestion.IngestResponse{
		DocumentID: stored.ID,
		URL:        stored.URL,
		Language:   stored.Language,
		Status:     ingestion.StatusStored,
	}
	if !inserted {
		resp.Status = ingestion.StatusDuplicate
		p.record(ingestion.StatusDuplicate)
		p.logger.Info("duplicate url ignored", "url", stored.URL)
		return resp, nil
	}
	p.record(ingestion.StatusStored)

	if p.producer == nil {
		return resp, nil
	}
	storedAt := stored.CreatedAt
	if storedAt.IsZero() {
		storedAt = p.now().UTC()
	}
	event := kafka.Event{
		Key:  stored.Language,
		Type: ingestion.EventDocumentStored,
		Value: ingestion.DocumentStoredEvent{
			EventID:    uuid.NewString(),
			DocumentID: stored.ID,
			URL:        stored.URL,
			Language:   stored.Language,
			StoredAt:   storedAt,
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		p.logger.Error("failed to publish document.stored, rebuild will pick it up later",
			"doc_id", stored.ID,
			"language", stored.Language,
			"error", err,
		)
	}
	return resp, nil
}

func (p *Publisher) record(status string) {
	if p.metrics != nil {
		p.metrics.DocsIngestedTotal.WithLabelValues(status).Inc()
	}
}
