package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
)

func lengths(m map[uint32]int) func(uint32) DocInfo {
	return func(id uint32) DocInfo { return DocInfo{DocLength: m[id]} }
}

func TestRankOrdersByScore(t *testing.T) {
	postings := map[string]index.PostingList{
		"india": {{DocID: 0, Frequency: 1}, {DocID: 1, Frequency: 3}},
	}
	got := Rank(postings, RankParams{TotalDocs: 3, AvgDocLength: 5}, lengths(map[uint32]int{0: 5, 1: 5}), 0)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(1), got[0].DocID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestRankRewardsMoreMatchedTerms(t *testing.T) {
	postings := map[string]index.PostingList{
		"india":   {{DocID: 0, Frequency: 1}, {DocID: 1, Frequency: 1}},
		"culture": {{DocID: 1, Frequency: 1}},
	}
	got := Rank(postings, RankParams{TotalDocs: 4, AvgDocLength: 4}, lengths(map[uint32]int{0: 4, 1: 4}), 0)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(1), got[0].DocID)
}

func TestRankTiesBreakByDocID(t *testing.T) {
	postings := map[string]index.PostingList{
		"india": {{DocID: 2, Frequency: 1}, {DocID: 0, Frequency: 1}, {DocID: 1, Frequency: 1}},
	}
	got := Rank(postings, RankParams{TotalDocs: 10, AvgDocLength: 3}, lengths(map[uint32]int{0: 3, 1: 3, 2: 3}), 2)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(0), got[0].DocID)
	assert.Equal(t, uint32(1), got[1].DocID)
}

func TestScoresArePositiveWhenTermInEveryDoc(t *testing.T) {
	postings := map[string]index.PostingList{
		"india": {{DocID: 0, Frequency: 1}},
	}
	got := Rank(postings, RankParams{TotalDocs: 1, AvgDocLength: 2}, lengths(map[uint32]int{0: 2}), 10)
	require.Len(t, got, 1)
	assert.Greater(t, got[0].Score, 0.0)
}

func TestZeroAverageLengthScoresZero(t *testing.T) {
	assert.Zero(t, computeTFNorm(1, 1, 0))
}
