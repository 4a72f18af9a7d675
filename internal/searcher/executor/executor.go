// Package executor evaluates a parsed query against one committed partition
// snapshot: OR semantics over the query terms, BM25 ranking, top-k.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/ranker"
)

// Source is the read side of a partition snapshot.
type Source interface {
	Search(term string) (index.PostingList, error)
	DocCount() int
	AvgDocLength() float64
	Doc(docID uint32) (index.StoredDoc, bool)
}

// Hit is a ranked document with its stored fields resolved.
type Hit struct {
	ranker.ScoredDoc
	Doc index.StoredDoc
}

type SearchResult struct {
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
	Hits      []Hit          `json:"-"`
	TermStats map[string]int `json:"term_stats"`
}

type Executor struct {
	logger *slog.Logger
}

func New() *Executor {
	return &Executor{
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute runs plan against src. A document matches when it contains at
// least one query term. limit <= 0 uses merger.DefaultLimit.
func (e *Executor) Execute(ctx context.Context, src Source, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if plan.IsEmpty() {
		return &SearchResult{Query: plan.RawQuery, Hits: []Hit{}}, nil
	}

	postingsPerTerm := make(map[string]index.PostingList)
	termStats := make(map[string]int)
	for _, term := range plan.Terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		postings, err := src.Search(term)
		if err != nil {
			return nil, fmt.Errorf("searching term %q: %w", term, err)
		}
		if len(postings) > 0 {
			postingsPerTerm[term] = postings
			termStats[term] = len(postings)
		}
	}

	params := ranker.RankParams{
		TotalDocs:    int64(src.DocCount()),
		AvgDocLength: src.AvgDocLength(),
	}
	getDocInfo := func(docID uint32) ranker.DocInfo {
		d, _ := src.Doc(docID)
		return ranker.DocInfo{DocLength: d.Length}
	}
	scored := ranker.Rank(postingsPerTerm, params, getDocInfo, 0)
	top := merger.TopK(scored, limit)

	hits := make([]Hit, 0, len(top))
	for _, s := range top {
		d, ok := src.Doc(s.DocID)
		if !ok {
			e.logger.Warn("posting references unknown document", "doc_id", s.DocID)
			continue
		}
		hits = append(hits, Hit{ScoredDoc: s, Doc: d})
	}

	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"language", plan.Language,
		"terms", plan.Terms,
		"candidates", len(scored),
		"results", len(hits),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		TotalHits: len(scored),
		Hits:      hits,
		TermStats: termStats,
	}, nil
}
