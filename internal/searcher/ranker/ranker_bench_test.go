package ranker

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
)

func BenchmarkRank(b *testing.B) {
	for _, numDocs := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			pl := make(index.PostingList, numDocs)
			for i := range pl {
				pl[i] = index.Posting{DocID: uint32(i), Frequency: i%10 + 1}
			}
			postings := map[string]index.PostingList{"search": pl}
			params := RankParams{TotalDocs: int64(numDocs * 2), AvgDocLength: 150}
			getDocInfo := func(docID uint32) DocInfo {
				return DocInfo{DocLength: 100 + int(docID%50)}
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = Rank(postings, params, getDocInfo, 10)
			}
		})
	}
}

func BenchmarkRankMultiTerm(b *testing.B) {
	for _, tc := range []int{1, 3, 5, 10} {
		b.Run(fmt.Sprintf("terms_%d", tc), func(b *testing.B) {
			postings := make(map[string]index.PostingList, tc)
			for t := 0; t < tc; t++ {
				pl := make(index.PostingList, 500)
				for i := range pl {
					pl[i] = index.Posting{DocID: uint32(i), Frequency: i%5 + 1}
				}
				postings[fmt.Sprintf("term%d", t)] = pl
			}
			params := RankParams{TotalDocs: 5000, AvgDocLength: 200}
			getDocInfo := func(uint32) DocInfo { return DocInfo{DocLength: 180} }

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = Rank(postings, params, getDocInfo, 10)
			}
		})
	}
}
