// Package consumer turns document.stored events into debounced full
// rebuilds of the affected language partitions. Events never touch a
// partition directly: bursts of ingestion collapse into one rebuild per
// language.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/kafka"
)

// RebuildFunc rebuilds the partitions of langs from the document store.
type RebuildFunc func(ctx context.Context, langs []string) error

// Scheduler collects languages that need a rebuild and runs it once no new
// request has arrived for the debounce interval, or after maxDelay at the
// latest.
type Scheduler struct {
	rebuild   RebuildFunc
	debounce  time.Duration
	maxDelay  time.Duration
	supported map[string]struct{}

	mu      sync.Mutex
	pending map[string]struct{}
	kick    chan struct{}
	logger  *slog.Logger
}

func NewScheduler(rebuild RebuildFunc, debounce time.Duration, supportedLanguages []string) *Scheduler {
	if debounce <= 0 {
		debounce = 10 * time.Second
	}
	s := &Scheduler{
		rebuild:   rebuild,
		debounce:  debounce,
		maxDelay:  6 * debounce,
		supported: make(map[string]struct{}, len(supportedLanguages)),
		pending:   make(map[string]struct{}),
		kick:      make(chan struct{}, 1),
		logger:    slog.Default().With("component", "rebuild-scheduler"),
	}
	for _, l := range supportedLanguages {
		s.supported[l] = struct{}{}
	}
	return s
}

// Schedule marks lang for rebuild. It reports false for unsupported
// languages, which are ignored.
func (s *Scheduler) Schedule(lang string) bool {
	if _, ok := s.supported[lang]; !ok {
		return false
	}
	s.mu.Lock()
	s.pending[lang] = struct{}{}
	s.mu.Unlock()
	select {
	case s.kick <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the languages waiting for a rebuild, sorted.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.pending)
}

// Run executes scheduled rebuilds until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("rebuild scheduler started", "debounce", s.debounce, "max_delay", s.maxDelay)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		}
		if !s.settle(ctx) {
			return
		}
		langs := s.drain()
		if len(langs) == 0 {
			continue
		}
		s.logger.Info("rebuilding partitions", "languages", langs)
		if err := s.rebuild(ctx, langs); err != nil {
			s.logger.Error("scheduled rebuild failed", "languages", langs, "error", err)
		}
	}
}

// settle waits until requests stop arriving. It returns false if ctx ends
// first.
func (s *Scheduler) settle(ctx context.Context) bool {
	deadline := time.NewTimer(s.maxDelay)
	defer deadline.Stop()
	quiet := time.NewTimer(s.debounce)
	defer quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-s.kick:
			quiet.Reset(s.debounce)
		case <-quiet.C:
			return true
		case <-deadline.C:
			return true
		}
	}
}

func (s *Scheduler) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	langs := sortedKeys(s.pending)
	s.pending = make(map[string]struct{})
	return langs
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HandleMessage returns a Kafka MessageHandler that schedules a rebuild of
// the event's language. Undecodable events are reported as poison so the
// consumer commits past them.
func HandleMessage(s *Scheduler) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentStoredEvent](value)
		if err != nil {
			return fmt.Errorf("document.stored event %q: %w", string(key), err)
		}
		if !s.Schedule(event.Language) {
			logger.Warn("ignoring event for unsupported language",
				"doc_id", event.DocumentID,
				"language", event.Language,
			)
			return nil
		}
		logger.Debug("rebuild scheduled",
			"doc_id", event.DocumentID,
			"language", event.Language,
			"event_id", event.EventID,
		)
		return nil
	}
}
