// Package registry maps language codes to partitions stored under a common
// root directory, one sub-directory per language. It is the explicit handle
// that the builder and the query engine share instead of a process-wide
// index.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/partition"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
)

// Registry lazily opens partitions and caches the handles.
type Registry struct {
	root       string
	analyzer   *analyzer.Analyzer
	partitions map[string]*partition.Partition
	mu         sync.RWMutex
	logger     *slog.Logger
}

func New(root string, an *analyzer.Analyzer) *Registry {
	return &Registry{
		root:       root,
		analyzer:   an,
		partitions: make(map[string]*partition.Partition),
		logger:     slog.Default().With("component", "partition-registry", "root", root),
	}
}

func (r *Registry) Root() string {
	return r.root
}

// Get returns the partition for lang, opening it on first use. Missing and
// corrupt partitions are not cached so a later build can heal them.
func (r *Registry) Get(lang string) (*partition.Partition, error) {
	r.mu.RLock()
	p, ok := r.partitions[lang]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.partitions[lang]; ok {
		return p, nil
	}
	p, err := partition.Open(r.root, lang, r.analyzer)
	if err != nil {
		return nil, err
	}
	r.partitions[lang] = p
	r.logger.Info("partition opened", "language", lang, "docs", p.DocCount())
	return p, nil
}

// Snapshot returns the committed snapshot of lang's partition.
func (r *Registry) Snapshot(lang string) (*segment.Snapshot, error) {
	p, err := r.Get(lang)
	if err != nil {
		return nil, err
	}
	return p.Snapshot(), nil
}

// OpenOrCreate returns a writable handle for lang, creating the partition
// if needed.
func (r *Registry) OpenOrCreate(lang string) (*partition.Partition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.partitions[lang]; ok {
		return p, nil
	}
	p, err := partition.OpenOrCreate(r.root, lang, r.analyzer)
	if err != nil {
		return nil, err
	}
	r.partitions[lang] = p
	return p, nil
}

// Languages lists the languages that have a snapshot on disk.
func (r *Registry) Languages() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	var langs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.root, e.Name(), segment.FileName)); err == nil {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs, nil
}

// Refresh reloads every cached partition whose snapshot changed on disk
// and returns the languages that changed. A partition that disappeared or
// became unreadable is evicted so the next Get reports it.
func (r *Registry) Refresh() []string {
	r.mu.RLock()
	handles := make(map[string]*partition.Partition, len(r.partitions))
	for lang, p := range r.partitions {
		handles[lang] = p
	}
	r.mu.RUnlock()

	var changed []string
	for lang, p := range handles {
		ok, err := p.Reload()
		if err != nil {
			r.logger.Error("partition reload failed", "language", lang, "error", err,
				"corrupt", errors.Is(err, apperrors.ErrPartitionCorrupt))
			r.evict(lang, p)
			changed = append(changed, lang)
			continue
		}
		if ok {
			r.logger.Info("partition reloaded",
				"language", lang,
				"generation", p.Snapshot().Generation(),
				"docs", p.DocCount(),
			)
			changed = append(changed, lang)
		}
	}
	sort.Strings(changed)
	return changed
}

func (r *Registry) evict(lang string, p *partition.Partition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.partitions[lang] == p {
		delete(r.partitions, lang)
	}
}

// StartRefreshLoop calls Refresh every interval until ctx is done, invoking
// onChange for each language whose snapshot changed.
func (r *Registry) StartRefreshLoop(ctx context.Context, interval time.Duration, onChange func(lang string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, lang := range r.Refresh() {
				if onChange != nil {
					onChange(lang)
				}
			}
		}
	}
}
