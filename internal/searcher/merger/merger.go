// Package merger keeps the best-scoring documents from one or more ranked
// candidate streams using a bounded min-heap.
package merger

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/ranker"
)

// DefaultLimit is the result page size used when limit is not positive.
const DefaultLimit = 10

// TopK returns the limit highest-ranked docs, best first.
func TopK(docs []ranker.ScoredDoc, limit int) []ranker.ScoredDoc {
	return Merge([][]ranker.ScoredDoc{docs}, limit)
}

func Merge(results [][]ranker.ScoredDoc, limit int) []ranker.ScoredDoc {
	if limit <= 0 {
		limit = DefaultLimit
	}
	h := &scoredDocHeap{}
	heap.Init(h)
	for _, batch := range results {
		for _, doc := range batch {
			heap.Push(h, doc)
			if h.Len() > limit {
				heap.Pop(h)
			}
		}
	}
	result := make([]ranker.ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ranker.ScoredDoc)
	}
	return result
}

type scoredDocHeap []ranker.ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool { return ranker.Less(h[i], h[j]) }

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x any) {
	*h = append(*h, x.(ranker.ScoredDoc))
}

func (h *scoredDocHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
