// Package langdetect guesses a query's language from the Unicode scripts of
// its letters. Each supported language is written in a distinct script, so
// counting letters per script is enough to pick one.
package langdetect

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinRunes is the shortest text detection is attempted on.
	MinRunes = 3
	// MinShare is the fraction of letters the dominant script must cover.
	MinShare = 0.6
)

// Result is the outcome of a detection. Reliable is false when the text
// was too short or no script dominated; Language is then empty.
type Result struct {
	Language   string
	Confidence float64
	Reliable   bool
}

type script struct {
	lang  string
	table *unicode.RangeTable
}

var scripts = []script{
	{"en", unicode.Latin},
	{"hi", unicode.Devanagari},
	{"ta", unicode.Tamil},
	{"te", unicode.Telugu},
}

// Detect inspects the letters of text.
func Detect(text string) Result {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinRunes {
		return Result{}
	}
	counts := make([]int, len(scripts))
	letters := 0
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			continue
		}
		letters++
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}
	if letters == 0 {
		return Result{}
	}
	best := 0
	for i := range counts {
		if counts[i] > counts[best] {
			best = i
		}
	}
	share := float64(counts[best]) / float64(letters)
	if counts[best] == 0 || share < MinShare {
		return Result{Confidence: share}
	}
	return Result{Language: scripts[best].lang, Confidence: share, Reliable: true}
}

// Script names the Unicode script of the first letter in word, or "" when
// word has no letters.
func Script(word string) string {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		for _, s := range scripts {
			if unicode.Is(s.table, r) {
				return s.lang
			}
		}
		for name, table := range unicode.Scripts {
			if unicode.Is(table, r) {
				return name
			}
		}
		return ""
	}
	return ""
}
