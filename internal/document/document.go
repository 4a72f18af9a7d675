// Package document defines the crawled document as it flows from the
// ingestion service through the store into the index builder.
package document

import (
	"time"
)

// Document is immutable once stored. URL is the global unique key.
type Document struct {
	ID        int64     `json:"id,omitempty"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	Language  string    `json:"language_code"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchableText is the indexed field: title and body joined by a space.
func (d Document) SearchableText() string {
	return d.Title + " " + d.Body
}

// GroupByLanguage splits docs by language code, preserving input order
// within each group.
func GroupByLanguage(docs []Document) map[string][]Document {
	groups := make(map[string][]Document)
	for _, d := range docs {
		groups[d.Language] = append(groups[d.Language], d)
	}
	return groups
}
