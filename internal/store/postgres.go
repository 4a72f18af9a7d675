package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            BIGSERIAL PRIMARY KEY,
	title         TEXT        NOT NULL,
	url           TEXT        NOT NULL UNIQUE,
	body          TEXT        NOT NULL,
	language_code VARCHAR(16) NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_language_idx ON documents (language_code, id);
`

type PostgresStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewPostgres(db *postgres.Client) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: slog.Default().With("component", "document-store"),
	}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating documents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, doc document.Document) (document.Document, bool, error) {
	err := s.db.DB.QueryRowContext(ctx,
		`INSERT INTO documents (title, url, body, language_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO NOTHING
		RETURNING id, created_at`,
		doc.Title, doc.URL, doc.Body, doc.Language,
	).Scan(&doc.ID, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("document already stored", "url", doc.URL)
		stored, err := s.byURL(ctx, doc.URL)
		if err != nil {
			return doc, false, err
		}
		return stored, false, nil
	}
	if err != nil {
		return doc, false, fmt.Errorf("inserting document %s: %w", doc.URL, err)
	}
	return doc, true, nil
}

func (s *PostgresStore) byURL(ctx context.Context, url string) (document.Document, error) {
	var d document.Document
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, title, url, body, language_code, created_at
		FROM documents
		WHERE url = $1`, url,
	).Scan(&d.ID, &d.Title, &d.URL, &d.Body, &d.Language, &d.CreatedAt)
	if err != nil {
		return d, fmt.Errorf("loading stored document %s: %w", url, err)
	}
	return d, nil
}

func (s *PostgresStore) FetchDocumentsByLanguage(ctx context.Context, lang string) ([]document.Document, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, title, url, body, language_code, created_at
		FROM documents
		WHERE language_code = $1
		ORDER BY id`, lang)
	if err != nil {
		return nil, fmt.Errorf("querying %s documents: %w", lang, err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var d document.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.URL, &d.Body, &d.Language, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s documents: %w", lang, err)
	}
	return docs, nil
}

func (s *PostgresStore) Languages(ctx context.Context) ([]string, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT DISTINCT language_code FROM documents ORDER BY language_code`)
	if err != nil {
		return nil, fmt.Errorf("querying languages: %w", err)
	}
	defer rows.Close()
	var langs []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scanning language: %w", err)
		}
		langs = append(langs, lang)
	}
	return langs, rows.Err()
}
