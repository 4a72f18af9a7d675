package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
)

// QueryPlan is a free-text query reduced to distinct normalised terms in
// order of first appearance. Free text is always a disjunction: any
// document containing at least one term is a candidate.
type QueryPlan struct {
	Terms    []string
	Language string
	RawQuery string
}

// Parse analyses query with lang's analyzer.
func Parse(an *analyzer.Analyzer, query, lang string) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0),
		Language: lang,
		RawQuery: query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	seen := make(map[string]struct{})
	for _, term := range an.Terms(query, lang) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		plan.Terms = append(plan.Terms, term)
	}
	return plan
}

// WithTerms returns a copy of the plan searching terms instead.
func (p *QueryPlan) WithTerms(terms []string) *QueryPlan {
	next := *p
	next.Terms = append([]string(nil), terms...)
	return &next
}

// IsEmpty reports whether the plan has nothing to search for.
func (p *QueryPlan) IsEmpty() bool {
	return len(p.Terms) == 0
}
