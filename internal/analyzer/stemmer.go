package analyzer

import (
	snowballeng "github.com/kljensen/snowball/english"
)

// Stemmer reduces a case-folded word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// StemmerFunc adapts a function to the Stemmer interface.
type StemmerFunc func(string) string

func (f StemmerFunc) Stem(word string) string { return f(word) }

// Identity leaves words unchanged.
type Identity struct{}

func (Identity) Stem(word string) string { return word }

// English is the Snowball (Porter2) English stemmer. Stop words are
// stemmed like any other word.
type English struct{}

func (English) Stem(word string) string {
	return snowballeng.Stem(word, true)
}
