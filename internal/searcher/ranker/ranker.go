// Package ranker scores candidate documents with Okapi BM25.
package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
)

const (
	k1 = 1.2
	b  = 0.75
)

// ScoredDoc is a partition-local document with its relevance score.
type ScoredDoc struct {
	DocID uint32  `json:"doc_id"`
	Score float64 `json:"score"`
}

type RankParams struct {
	TotalDocs    int64
	AvgDocLength float64
}

type DocInfo struct {
	DocLength int
}

// Score accumulates BM25 contributions for every posting of every term.
// Duplicate terms must be removed by the caller.
func Score(
	postingsPerTerm map[string]index.PostingList,
	params RankParams,
	getDocInfo func(docID uint32) DocInfo,
) map[uint32]float64 {
	scores := make(map[uint32]float64)
	for _, postings := range postingsPerTerm {
		idf := computeIDF(params.TotalDocs, int64(len(postings)))
		for _, posting := range postings {
			info := getDocInfo(posting.DocID)
			scores[posting.DocID] += idf * computeTFNorm(
				float64(posting.Frequency),
				float64(info.DocLength),
				params.AvgDocLength,
			)
		}
	}
	return scores
}

// Rank scores and sorts candidates by score descending, breaking ties by
// DocID ascending. limit <= 0 keeps everything.
func Rank(
	postingsPerTerm map[string]index.PostingList,
	params RankParams,
	getDocInfo func(docID uint32) DocInfo,
	limit int,
) []ScoredDoc {
	scores := Score(postingsPerTerm, params, getDocInfo)
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: math.Round(score*10000) / 10000,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return Less(result[j], result[i])
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Less orders a before b when a ranks lower: smaller score, or equal score
// and larger DocID.
func Less(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.DocID > b.DocID
}

func computeIDF(totalDocs int64, docFreq int64) float64 {
	numerator := float64(totalDocs) - float64(docFreq)
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

func computeTFNorm(termFreq float64, docLength float64, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}
