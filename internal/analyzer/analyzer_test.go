package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeFoldsCaseAndKeepsStopWords(t *testing.T) {
	a := New()
	terms := a.Terms("The Quick fox IS in India", "xx")
	assert.Equal(t, []string{"the", "quick", "fox", "is", "in", "india"}, terms)
}

func TestTokenizeOffsetsPointAtSurface(t *testing.T) {
	a := New()
	text := "Hello,  Wörld! 42"
	tokens := a.Tokenize(text, "xx")
	require.Len(t, tokens, 3)
	for i, tok := range tokens {
		assert.Equal(t, i, tok.Position)
		assert.Equal(t, tok.Surface, text[tok.Start:tok.End])
	}
	assert.Equal(t, "wörld", tokens[1].Term)
	assert.Equal(t, "42", tokens[2].Term)
}

func TestTokenizeKeepsIndicCombiningMarks(t *testing.T) {
	a := New()
	tests := []struct {
		lang string
		text string
		want []string
	}{
		{"hi", "भारत अवलोकन", []string{"भारत", "अवलोकन"}},
		{"ta", "இந்தியா வரலாறு", []string{"இந்தியா", "வரலாறு"}},
		{"te", "భారతదేశం చరిత్ర", []string{"భారతదేశం", "చరిత్ర"}},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Terms(tt.text, tt.lang))
		})
	}
}

func TestEnglishStemmingOnlyForEnglish(t *testing.T) {
	a := New()
	assert.Equal(t, []string{"run", "cat"}, a.Terms("running cats", "en"))
	assert.Equal(t, "run", a.Normalize("Running", "en"))
	assert.Equal(t, "running", a.Normalize("Running", "hi"))
}

func TestRegisterOverridesStemmer(t *testing.T) {
	a := New()
	a.Register("ta", StemmerFunc(func(w string) string { return strings.TrimSuffix(w, "கள்") }))
	assert.Equal(t, "புத்தக", a.Normalize("புத்தககள்", "ta"))
	assert.IsType(t, Identity{}, a.StemmerFor("te"))
}

func TestTokenizeIsDeterministic(t *testing.T) {
	a := New()
	text := "India overview: history, geography and culture of India"
	assert.Equal(t, a.Tokenize(text, "en"), a.Tokenize(text, "en"))
}

func TestNormalizeEmpty(t *testing.T) {
	a := New()
	assert.Equal(t, "", a.Normalize("  ,;  ", "en"))
	assert.Empty(t, a.Tokenize("", "en"))
}
