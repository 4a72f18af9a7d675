// Package cache memoises search responses in Redis. Concurrent identical
// queries are collapsed with singleflight. Entries are dropped wholesale
// when any partition snapshot changes. While Redis keeps failing a circuit
// breaker skips it and every lookup is a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/resilience"
)

const keyPrefix = "search:"

// Backend is the subset of the Redis client the cache needs.
type Backend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type entry struct {
	Results    []engine.Result    `json:"results"`
	Suggestion *string            `json:"suggestion"`
	Language   string             `json:"language"`
	Kind       engine.OutcomeKind `json:"kind"`
	Corrected  bool               `json:"corrected"`
}

type QueryCache struct {
	client  Backend
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over client. m may be nil.
func New(client Backend, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		ttl:     ttl,
		breaker: resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     10 * time.Second,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, req engine.Request) (*engine.Response, bool) {
	key := BuildKey(req)
	var data []byte
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.client.GetBytes(ctx, key)
		if pkgredis.IsNilError(err) {
			return nil
		}
		return err
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		c.recordMiss()
		return nil, false
	case err != nil:
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	case data == nil:
		c.recordMiss()
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	return &engine.Response{
		Results:    e.Results,
		Suggestion: e.Suggestion,
		Outcome: engine.Outcome{
			Kind:      e.Kind,
			Language:  e.Language,
			Corrected: e.Corrected,
		},
	}, true
}

// Set stores resp unless its outcome is transient: errors, corrupt or
// missing partitions are never cached since a rebuild may fix them.
func (c *QueryCache) Set(ctx context.Context, req engine.Request, resp *engine.Response) {
	if !Cacheable(resp.Outcome.Kind) {
		return
	}
	key := BuildKey(req)
	data, err := json.Marshal(entry{
		Results:    resp.Results,
		Suggestion: resp.Suggestion,
		Language:   resp.Outcome.Language,
		Kind:       resp.Outcome.Kind,
		Corrected:  resp.Outcome.Corrected,
	})
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response for req or computes, stores and
// returns it. cached reports whether the response came from Redis.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	req engine.Request,
	compute func() *engine.Response,
) (resp *engine.Response, cached bool) {
	if resp, ok := c.Get(ctx, req); ok {
		return resp, true
	}
	val, _, _ := c.group.Do(BuildKey(req), func() (any, error) {
		resp := compute()
		c.Set(ctx, req, resp)
		return resp, nil
	})
	return val.(*engine.Response), false
}

func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports whether Redis is currently being skipped.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Cacheable reports whether responses with outcome kind may be cached.
func Cacheable(kind engine.OutcomeKind) bool {
	switch kind {
	case engine.OutcomeHit, engine.OutcomeCorrected, engine.OutcomeZeroResult:
		return true
	}
	return false
}

// BuildKey derives the Redis key for req. Queries differing only in case
// or whitespace share a key.
func BuildKey(req engine.Request) string {
	raw := req.LanguageOverride + "|" + normalizeQuery(req.Text)
	return fmt.Sprintf("%s%016x", keyPrefix, xxhash.Sum64String(raw))
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
