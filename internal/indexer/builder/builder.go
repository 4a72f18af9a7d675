// Package builder performs offline, full rebuilds of language partitions.
// Documents are grouped by their language code; each group is added to a
// reset partition and committed once. Groups build in parallel because
// partitions share no mutable state.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/partition"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
)

// Partitions hands out writable partitions by language.
type Partitions interface {
	OpenOrCreate(lang string) (*partition.Partition, error)
}

// Source is the document store as seen by the builder.
type Source interface {
	FetchDocumentsByLanguage(ctx context.Context, lang string) ([]document.Document, error)
}

type LanguageReport struct {
	Language   string        `json:"language"`
	Added      int           `json:"added"`
	Duplicates int           `json:"duplicates"`
	Malformed  int           `json:"malformed"`
	Foreign    int           `json:"foreign"`
	Generation uint64        `json:"generation"`
	Duration   time.Duration `json:"duration"`
}

func (r LanguageReport) Skipped() int {
	return r.Duplicates + r.Malformed + r.Foreign
}

type Report struct {
	Languages []LanguageReport `json:"languages"`
}

// Added sums the documents committed across languages.
func (r Report) Added() int {
	n := 0
	for _, l := range r.Languages {
		n += l.Added
	}
	return n
}

type Builder struct {
	partitions  Partitions
	maxParallel int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New returns a Builder. m may be nil.
func New(partitions Partitions, maxParallel int, m *metrics.Metrics) *Builder {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &Builder{
		partitions:  partitions,
		maxParallel: maxParallel,
		metrics:     m,
		logger:      slog.Default().With("component", "index-builder"),
	}
}

// Build groups docs by language and rebuilds each language's partition.
// A failing language does not stop the others; their errors are joined.
func (b *Builder) Build(ctx context.Context, docs []document.Document) (Report, error) {
	groups := document.GroupByLanguage(docs)
	langs := make([]string, 0, len(groups))
	for lang := range groups {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return b.run(ctx, langs, func(ctx context.Context, lang string) (LanguageReport, error) {
		return b.BuildLanguage(ctx, lang, groups[lang])
	})
}

// RebuildFromStore fetches and rebuilds every language in langs.
func (b *Builder) RebuildFromStore(ctx context.Context, src Source, langs []string) (Report, error) {
	return b.run(ctx, langs, func(ctx context.Context, lang string) (LanguageReport, error) {
		docs, err := src.FetchDocumentsByLanguage(ctx, lang)
		if err != nil {
			return LanguageReport{Language: lang}, fmt.Errorf("fetching %s documents: %w", lang, err)
		}
		return b.BuildLanguage(ctx, lang, docs)
	})
}

func (b *Builder) run(ctx context.Context, langs []string, build func(context.Context, string) (LanguageReport, error)) (Report, error) {
	var (
		mu      sync.Mutex
		reports []LanguageReport
		errs    []error
	)
	var g errgroup.Group
	g.SetLimit(b.maxParallel)
	for _, lang := range langs {
		g.Go(func() error {
			rep, err := build(ctx, lang)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			reports = append(reports, rep)
			return nil
		})
	}
	g.Wait()
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Language < reports[j].Language
	})
	return Report{Languages: reports}, errors.Join(errs...)
}

// BuildLanguage rebuilds lang's partition from docs and commits once.
// Documents tagged with another language, duplicates and malformed
// documents are logged and skipped.
func (b *Builder) BuildLanguage(ctx context.Context, lang string, docs []document.Document) (LanguageReport, error) {
	start := time.Now()
	rep := LanguageReport{Language: lang}
	logger := b.logger.With("language", lang)

	p, err := b.partitions.OpenOrCreate(lang)
	if err != nil {
		b.observe(lang, "error", start)
		return rep, err
	}
	p.Reset()

	for i, doc := range docs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				b.observe(lang, "cancelled", start)
				return rep, fmt.Errorf("building %s: %w", lang, err)
			}
		}
		if doc.Language != lang {
			rep.Foreign++
			b.skip(lang, "foreign")
			logger.Warn("skipping document tagged with another language", "url", doc.URL, "document_language", doc.Language)
			continue
		}
		if err := p.Add(doc); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrDuplicateURL):
				rep.Duplicates++
				b.skip(lang, "duplicate")
				logger.Debug("skipping duplicate document", "url", doc.URL)
			default:
				rep.Malformed++
				b.skip(lang, "malformed")
				logger.Warn("skipping document", "url", doc.URL, "error", err)
			}
			continue
		}
		rep.Added++
	}

	if err := p.Commit(); err != nil {
		b.observe(lang, "error", start)
		return rep, err
	}
	rep.Generation = p.Snapshot().Generation()
	rep.Duration = time.Since(start)
	b.observe(lang, "ok", start)
	if b.metrics != nil {
		b.metrics.DocsIndexedTotal.WithLabelValues(lang).Add(float64(rep.Added))
		b.metrics.PartitionDocCount.WithLabelValues(lang).Set(float64(p.DocCount()))
	}
	logger.Info("partition rebuilt",
		"added", rep.Added,
		"skipped", rep.Skipped(),
		"generation", rep.Generation,
		"duration", rep.Duration,
	)
	return rep, nil
}

func (b *Builder) skip(lang, reason string) {
	if b.metrics != nil {
		b.metrics.DocsSkippedTotal.WithLabelValues(lang, reason).Inc()
	}
}

func (b *Builder) observe(lang, status string, start time.Time) {
	if b.metrics != nil {
		b.metrics.BuildDuration.WithLabelValues(lang, status).Observe(time.Since(start).Seconds())
	}
}
