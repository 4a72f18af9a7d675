// Package snippet builds short highlighted excerpts of stored document text.
package snippet

import (
	"html"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
)

const (
	// DefaultWords is the window size used when none is configured.
	DefaultWords = 30
	// Fallback is returned when the text contains no query term.
	Fallback = "..."

	openTag  = "<b>"
	closeTag = "</b>"
	ellipsis = "..."
)

type Generator struct {
	analyzer *analyzer.Analyzer
	words    int
}

func New(an *analyzer.Analyzer, words int) *Generator {
	if words <= 0 {
		words = DefaultWords
	}
	return &Generator{analyzer: an, words: words}
}

// Generate returns the window of text with the most query-term matches.
// Matched words are wrapped in <b> tags, surrounding text is HTML-escaped,
// and "..." marks truncated edges. Ties go to the earliest window.
func (g *Generator) Generate(text, lang string, terms []string) string {
	if len(terms) == 0 {
		return Fallback
	}
	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}
	tokens := g.analyzer.Tokenize(text, lang)
	hit := make([]bool, len(tokens))
	total := 0
	for i, tok := range tokens {
		if _, ok := want[tok.Term]; ok {
			hit[i] = true
			total++
		}
	}
	if total == 0 {
		return Fallback
	}

	start, end := bestWindow(hit, g.words)
	var sb strings.Builder
	if start > 0 {
		sb.WriteString(ellipsis)
		sb.WriteByte(' ')
	}
	cursor := tokens[start].Start
	for i := start; i < end; i++ {
		tok := tokens[i]
		sb.WriteString(html.EscapeString(text[cursor:tok.Start]))
		if hit[i] {
			sb.WriteString(openTag)
			sb.WriteString(html.EscapeString(tok.Surface))
			sb.WriteString(closeTag)
		} else {
			sb.WriteString(html.EscapeString(tok.Surface))
		}
		cursor = tok.End
	}
	if end < len(tokens) {
		sb.WriteByte(' ')
		sb.WriteString(ellipsis)
	}
	return sb.String()
}

// bestWindow returns the half-open token range of at most size tokens
// covering the most hits.
func bestWindow(hit []bool, size int) (int, int) {
	if len(hit) <= size {
		return 0, len(hit)
	}
	count := 0
	for i := 0; i < size; i++ {
		if hit[i] {
			count++
		}
	}
	best, bestStart := count, 0
	for i := size; i < len(hit); i++ {
		if hit[i] {
			count++
		}
		if hit[i-size] {
			count--
		}
		if count > best {
			best, bestStart = count, i-size+1
		}
	}
	return bestStart, bestStart + size
}
