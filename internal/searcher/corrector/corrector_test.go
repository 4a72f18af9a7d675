package corrector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/partition"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"india", "india", 0},
		{"indai", "india", 2},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"भारत", "भारत", 0},
		{"भारत", "भरत", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestBoundedDistanceGivesUp(t *testing.T) {
	_, ok := boundedDistance([]rune("abcdef"), []rune("a"), 3)
	assert.False(t, ok)

	d, ok := boundedDistance([]rune("abcd"), []rune("abce"), 3)
	require.True(t, ok)
	assert.Equal(t, 1, d)
}

func TestSuggestNearest(t *testing.T) {
	d := NewDictionary([]string{"cultur", "histori", "india", "overview"})
	got, dist, err := d.Suggest("indai")
	require.NoError(t, err)
	assert.Equal(t, "india", got)
	assert.Equal(t, 2, dist)
}

func TestSuggestExactMatch(t *testing.T) {
	d := NewDictionary([]string{"india", "indian"})
	got, dist, err := d.Suggest("india")
	require.NoError(t, err)
	assert.Equal(t, "india", got)
	assert.Zero(t, dist)
}

func TestSuggestTieBreaksLexicographically(t *testing.T) {
	d := NewDictionary([]string{"bat", "cat", "hat"})
	got, dist, err := d.Suggest("mat")
	require.NoError(t, err)
	assert.Equal(t, "bat", got)
	assert.Equal(t, 1, dist)
}

func TestSuggestHasNoFixedThreshold(t *testing.T) {
	d := NewDictionary([]string{"india"})
	got, dist, err := d.Suggest("ixxxxxxxxxxx")
	require.NoError(t, err)
	assert.Equal(t, "india", got)
	assert.Equal(t, 11, dist)
}

func TestSuggestIgnoresOtherScripts(t *testing.T) {
	d := NewDictionary([]string{"अवलोकन", "भारत"})
	_, _, err := d.Suggest("india")
	assert.ErrorIs(t, err, apperrors.ErrCorrectionExhausted)

	mixed := NewDictionary([]string{"zzzz", "भारत"})
	got, dist, err := mixed.Suggest("india")
	require.NoError(t, err)
	assert.Equal(t, "zzzz", got)
	assert.Equal(t, 5, dist)
}

func TestSuggestAlwaysReturnsNearestInScript(t *testing.T) {
	got, dist, err := NewDictionary([]string{"india", "overview"}).Suggest("xyz")
	require.NoError(t, err)
	assert.Equal(t, "india", got)
	assert.Equal(t, 5, dist)

	got, _, err = NewDictionary([]string{"abc"}).Suggest("xyz")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestSuggestEmptyVocabulary(t *testing.T) {
	_, _, err := NewDictionary(nil).Suggest("india")
	assert.ErrorIs(t, err, apperrors.ErrCorrectionExhausted)
}

func committed(t *testing.T, docs ...document.Document) *partition.Partition {
	t.Helper()
	p, err := partition.OpenOrCreate(t.TempDir(), "en", analyzer.New())
	require.NoError(t, err)
	for _, d := range docs {
		require.NoError(t, p.Add(d))
	}
	require.NoError(t, p.Commit())
	return p
}

func TestCorrectAll(t *testing.T) {
	p := committed(t, document.Document{URL: "u1", Title: "India Overview", Body: "history and culture", Language: "en"})
	c := New()

	got, changed := c.CorrectAll("en", p.Snapshot(), []string{"indai", "histori"})
	assert.True(t, changed)
	assert.Equal(t, []string{"india", "histori"}, got)

	got, changed = c.CorrectAll("en", p.Snapshot(), []string{"india"})
	assert.False(t, changed)
	assert.Equal(t, []string{"india"}, got)
}

func TestCorrectAllEmptyVocabularyKeepsTerms(t *testing.T) {
	c := New()
	got, changed := c.CorrectAll("hi", segment.Empty(1), []string{"india"})
	assert.False(t, changed)
	assert.Equal(t, []string{"india"}, got)

	_, err := c.Suggest("hi", segment.Empty(1), "india")
	assert.ErrorIs(t, err, apperrors.ErrCorrectionExhausted)
}

func TestDictionaryRebuiltOnNewSnapshot(t *testing.T) {
	p := committed(t, document.Document{URL: "u1", Title: "India", Language: "en"})
	c := New()
	first := c.Dictionary("en", p.Snapshot())
	assert.Same(t, first, c.Dictionary("en", p.Snapshot()))
	assert.Equal(t, 1, first.Len())

	require.NoError(t, p.Add(document.Document{URL: "u2", Title: "Tamil Nadu", Language: "en"}))
	require.NoError(t, p.Commit())
	second := c.Dictionary("en", p.Snapshot())
	assert.NotSame(t, first, second)
	assert.Equal(t, 3, second.Len())
}
