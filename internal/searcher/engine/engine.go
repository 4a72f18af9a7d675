// Package engine answers free-text queries. A query is served from exactly
// one language partition. It moves through these states:
//
//	Start → LanguageSelected → PartitionResolved → Parsed → Executed → (Corrected) → Done
//
// Empty text stops at Start without touching any partition. A missing
// partition yields no results and no error. When execution finds nothing,
// each query term is replaced by its nearest vocabulary term and the query
// is run once more; the corrected terms become the suggestion.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/corrector"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/langdetect"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/snippet"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/tracing"
)

// Partitions resolves a language to its committed snapshot.
type Partitions interface {
	Snapshot(lang string) (*segment.Snapshot, error)
}

type Config struct {
	DefaultLanguage    string
	SupportedLanguages []string
	MaxResults         int
	SnippetWords       int
}

type Request struct {
	Text             string
	LanguageOverride string
}

type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

type Response struct {
	Results    []Result `json:"results"`
	Suggestion *string  `json:"suggestion"`
	Outcome    Outcome  `json:"-"`
}

type OutcomeKind string

const (
	OutcomeEmptyQuery       OutcomeKind = "empty_query"
	OutcomePartitionMissing OutcomeKind = "partition_missing"
	OutcomePartitionCorrupt OutcomeKind = "partition_corrupt"
	OutcomeHit              OutcomeKind = "hit"
	OutcomeCorrected        OutcomeKind = "corrected"
	OutcomeZeroResult       OutcomeKind = "zero_result"
	OutcomeError            OutcomeKind = "error"
)

// Outcome describes how a query was served. Err is set only for partition
// corruption and unexpected failures; the response still carries empty
// results in that case.
type Outcome struct {
	Kind             OutcomeKind
	Language         string
	LanguageFallback bool
	Corrected        bool
	Terms            []string
	Err              error
}

type Engine struct {
	partitions Partitions
	analyzer   *analyzer.Analyzer
	executor   *executor.Executor
	corrector  *corrector.Corrector
	snippets   *snippet.Generator
	cfg        Config
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New builds an Engine. m may be nil.
func New(partitions Partitions, an *analyzer.Analyzer, cfg Config, m *metrics.Metrics) *Engine {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if len(cfg.SupportedLanguages) == 0 {
		cfg.SupportedLanguages = []string{cfg.DefaultLanguage}
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	return &Engine{
		partitions: partitions,
		analyzer:   an,
		executor:   executor.New(),
		corrector:  corrector.New(),
		snippets:   snippet.New(an, cfg.SnippetWords),
		cfg:        cfg,
		metrics:    m,
		logger:     slog.Default().With("component", "query-engine"),
	}
}

// Search runs req to completion. It never returns nil; failures are
// reported through Response.Outcome.
func (e *Engine) Search(ctx context.Context, req Request) *Response {
	if strings.TrimSpace(req.Text) == "" {
		return e.finish(Outcome{Kind: OutcomeEmptyQuery}, nil)
	}

	lang, fallback := e.SelectLanguage(req.Text, req.LanguageOverride)
	outcome := Outcome{Language: lang, LanguageFallback: fallback}

	if !e.supports(lang) {
		outcome.Kind = OutcomePartitionMissing
		e.logger.Debug("no partition for requested language", "language", lang)
		return e.finish(outcome, nil)
	}

	snap, err := e.partitions.Snapshot(lang)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPartitionMissing):
			outcome.Kind = OutcomePartitionMissing
		case errors.Is(err, apperrors.ErrPartitionCorrupt):
			outcome.Kind = OutcomePartitionCorrupt
			outcome.Err = err
			e.logger.Error("partition unreadable", "language", lang, "error", err)
			if e.metrics != nil {
				e.metrics.PartitionErrorsTotal.WithLabelValues(lang).Inc()
			}
		default:
			outcome.Kind = OutcomeError
			outcome.Err = err
			e.logger.Error("resolving partition failed", "language", lang, "error", err)
		}
		return e.finish(outcome, nil)
	}

	plan := parser.Parse(e.analyzer, req.Text, lang)
	outcome.Terms = plan.Terms
	if plan.IsEmpty() {
		outcome.Kind = OutcomeZeroResult
		return e.finish(outcome, nil)
	}

	res, err := e.execute(ctx, snap, plan)
	if err != nil {
		return e.fail(outcome, err)
	}
	if len(res.Hits) > 0 {
		outcome.Kind = OutcomeHit
		return e.finish(outcome, e.results(ctx, res, lang, plan.Terms))
	}

	_, span := tracing.StartChild(ctx, "correct")
	corrected, changed := e.corrector.CorrectAll(lang, snap, plan.Terms)
	span.SetAttr("changed", changed)
	span.End()
	if e.metrics != nil {
		e.metrics.CorrectionsTotal.WithLabelValues(lang, strconv.FormatBool(changed)).Inc()
	}
	if !changed {
		outcome.Kind = OutcomeZeroResult
		return e.finish(outcome, nil)
	}

	retry := plan.WithTerms(corrected)
	res, err = e.execute(ctx, snap, retry)
	if err != nil {
		return e.fail(outcome, err)
	}
	outcome.Kind = OutcomeCorrected
	outcome.Corrected = true
	outcome.Terms = retry.Terms
	resp := e.finish(outcome, e.results(ctx, res, lang, retry.Terms))
	suggestion := strings.Join(corrected, " ")
	resp.Suggestion = &suggestion
	e.logger.Debug("query corrected", "query", req.Text, "suggestion", suggestion, "results", len(resp.Results))
	return resp
}

// SelectLanguage picks the partition for text. An explicit override always
// wins, even for a language with no partition; otherwise the script of the
// text decides. fallback reports that detection gave no supported answer
// and the default language was used.
func (e *Engine) SelectLanguage(text, override string) (lang string, fallback bool) {
	if override != "" {
		return override, false
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= langdetect.MinRunes {
		if d := langdetect.Detect(text); d.Reliable && e.supports(d.Language) {
			return d.Language, false
		}
	}
	e.logger.Debug("language detection fell back to default",
		"default", e.cfg.DefaultLanguage,
		"error", apperrors.ErrLanguageAmbiguous,
	)
	return e.cfg.DefaultLanguage, true
}

func (e *Engine) supports(lang string) bool {
	for _, l := range e.cfg.SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func (e *Engine) execute(ctx context.Context, snap *segment.Snapshot, plan *parser.QueryPlan) (*executor.SearchResult, error) {
	ctx, span := tracing.StartChild(ctx, "execute")
	defer span.End()
	span.SetAttr("terms", len(plan.Terms))
	res, err := e.executor.Execute(ctx, snap, plan, e.cfg.MaxResults)
	if err == nil {
		span.SetAttr("total_hits", res.TotalHits)
	}
	return res, err
}

func (e *Engine) results(ctx context.Context, res *executor.SearchResult, lang string, terms []string) []Result {
	_, span := tracing.StartChild(ctx, "snippets")
	defer span.End()
	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, Result{
			Title:   h.Doc.Title,
			URL:     h.Doc.URL,
			Snippet: e.snippets.Generate(h.Doc.Text, lang, terms),
			Score:   h.Score,
		})
	}
	return out
}

func (e *Engine) fail(outcome Outcome, err error) *Response {
	outcome.Kind = OutcomeError
	outcome.Err = err
	e.logger.Error("query execution failed", "language", outcome.Language, "error", err)
	return e.finish(outcome, nil)
}

func (e *Engine) finish(outcome Outcome, results []Result) *Response {
	if results == nil {
		results = []Result{}
	}
	if e.metrics != nil {
		lang := outcome.Language
		switch {
		case lang == "":
			lang = "none"
		case !e.supports(lang):
			lang = "unsupported"
		}
		e.metrics.SearchQueriesTotal.WithLabelValues(lang, string(outcome.Kind)).Inc()
		if outcome.Kind != OutcomeEmptyQuery {
			e.metrics.SearchResultsCount.Observe(float64(len(results)))
		}
	}
	return &Response{Results: results, Outcome: outcome}
}
