// Package corrector finds the vocabulary term nearest to a misspelled query
// term by edit distance. There is no distance threshold; only candidates
// written in the same script as the term are considered, since a word in
// another script is a translation rather than a typo. Among equally distant
// candidates the lexicographically smallest wins.
package corrector

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/searcher/langdetect"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
)

// Dictionary is a nearest-term index over a sorted vocabulary.
type Dictionary struct {
	terms   []string
	runes   [][]rune
	scripts []string
}

// NewDictionary builds a Dictionary. vocabulary must be sorted ascending,
// as partition vocabularies are.
func NewDictionary(vocabulary []string) *Dictionary {
	d := &Dictionary{
		terms:   vocabulary,
		runes:   make([][]rune, len(vocabulary)),
		scripts: make([]string, len(vocabulary)),
	}
	for i, t := range vocabulary {
		d.runes[i] = []rune(t)
		d.scripts[i] = langdetect.Script(t)
	}
	return d
}

func (d *Dictionary) Len() int {
	return len(d.terms)
}

// Suggest returns the nearest vocabulary term to term and its distance. It
// returns ErrCorrectionExhausted when the dictionary is empty or holds no
// term in the same script.
func (d *Dictionary) Suggest(term string) (string, int, error) {
	target := []rune(term)
	script := langdetect.Script(term)
	best := -1
	bestDist := -1
	for i, cand := range d.runes {
		if d.scripts[i] != script {
			continue
		}
		dist, ok := boundedDistance(target, cand, bestDist)
		if !ok {
			continue
		}
		best, bestDist = i, dist
		if dist == 0 {
			break
		}
	}
	if best < 0 {
		return "", 0, apperrors.ErrCorrectionExhausted
	}
	return d.terms[best], bestDist, nil
}

// Corrector keeps one Dictionary per language, rebuilt whenever the
// partition snapshot it was derived from changes.
type Corrector struct {
	mu    sync.Mutex
	dicts map[string]cached
}

type cached struct {
	snapshot *segment.Snapshot
	dict     *Dictionary
}

func New() *Corrector {
	return &Corrector{dicts: make(map[string]cached)}
}

// Dictionary returns the dictionary for snap, building it on first use.
func (c *Corrector) Dictionary(lang string, snap *segment.Snapshot) *Dictionary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dicts[lang]; ok && e.snapshot == snap {
		return e.dict
	}
	d := NewDictionary(snap.Terms())
	c.dicts[lang] = cached{snapshot: snap, dict: d}
	return d
}

// Suggest corrects a single term against lang's committed vocabulary.
func (c *Corrector) Suggest(lang string, snap *segment.Snapshot, term string) (string, error) {
	s, _, err := c.Dictionary(lang, snap).Suggest(term)
	return s, err
}

// CorrectAll corrects every term independently. A term with no candidate
// is kept as is. changed reports whether any term differs.
func (c *Corrector) CorrectAll(lang string, snap *segment.Snapshot, terms []string) (corrected []string, changed bool) {
	dict := c.Dictionary(lang, snap)
	corrected = make([]string, len(terms))
	for i, term := range terms {
		s, _, err := dict.Suggest(term)
		if err != nil {
			corrected[i] = term
			continue
		}
		corrected[i] = s
		if s != term {
			changed = true
		}
	}
	return corrected, changed
}
