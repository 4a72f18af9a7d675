// Package analyzer turns raw text into normalised terms. Words are maximal
// runs of letters, digits and combining marks, so Indic vowel signs stay
// attached to their consonants. Text is case-folded but no stop words are
// removed. Stemming is pluggable per language; languages without a
// registered stemmer keep their folded tokens unchanged.
package analyzer

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Token is a single normalised term with its ordinal position and the byte
// range of the original word in the analysed text.
type Token struct {
	Term     string
	Surface  string
	Position int
	Start    int
	End      int
}

// Analyzer holds the per-language stemmer table. The zero value is not
// usable; call New.
type Analyzer struct {
	mu       sync.RWMutex
	stemmers map[string]Stemmer
}

// New returns an Analyzer with the default stemmers registered.
func New() *Analyzer {
	a := &Analyzer{stemmers: make(map[string]Stemmer)}
	a.Register("en", English{})
	return a
}

// Register installs s for lang, replacing any previous stemmer.
func (a *Analyzer) Register(lang string, s Stemmer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stemmers[lang] = s
}

// StemmerFor returns the stemmer for lang, or Identity.
func (a *Analyzer) StemmerFor(lang string) Stemmer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if s, ok := a.stemmers[lang]; ok {
		return s
	}
	return Identity{}
}

// Tokenize splits text into tokens in order of appearance.
func (a *Analyzer) Tokenize(text, lang string) []Token {
	stemmer := a.StemmerFor(lang)
	tokens := make([]Token, 0, len(text)/6)
	pos := 0
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = appendToken(tokens, stemmer, text, start, i, pos)
			pos++
			start = -1
		}
	}
	if start >= 0 {
		tokens = appendToken(tokens, stemmer, text, start, len(text), pos)
	}
	return tokens
}

// Terms returns only the normalised terms of text.
func (a *Analyzer) Terms(text, lang string) []string {
	tokens := a.Tokenize(text, lang)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// Normalize analyses a single word, returning "" if it holds no word runes.
func (a *Analyzer) Normalize(word, lang string) string {
	tokens := a.Tokenize(word, lang)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0].Term
}

func appendToken(tokens []Token, stemmer Stemmer, text string, start, end, pos int) []Token {
	surface := text[start:end]
	folded := strings.ToLower(surface)
	term := stemmer.Stem(folded)
	if term == "" {
		term = folded
	}
	return append(tokens, Token{
		Term:     term,
		Surface:  surface,
		Position: pos,
		Start:    start,
		End:      end,
	})
}

func isWordRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
