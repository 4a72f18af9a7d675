// Package store is the URL-deduplicated document store. Inserting a URL
// that already exists is a no-op, never an update and never an error. The
// index builder reads it only through FetchDocumentsByLanguage.
package store

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
)

type Store interface {
	// Insert stores doc unless its URL is already present. It returns the
	// stored row (with ID and CreatedAt filled in) and whether it was new.
	Insert(ctx context.Context, doc document.Document) (document.Document, bool, error)
	FetchDocumentsByLanguage(ctx context.Context, lang string) ([]document.Document, error)
	Languages(ctx context.Context) ([]string, error)
}
