package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
)

// MemoryStore is an in-process Store for tests and local runs without
// Postgres.
type MemoryStore struct {
	mu     sync.RWMutex
	byURL  map[string]int
	docs   []document.Document
	nextID int64
	now    func() time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		byURL: make(map[string]int),
		now:   time.Now,
	}
}

func (s *MemoryStore) Insert(_ context.Context, doc document.Document) (document.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byURL[doc.URL]; ok {
		return s.docs[i], false, nil
	}
	s.nextID++
	doc.ID = s.nextID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now().UTC()
	}
	s.byURL[doc.URL] = len(s.docs)
	s.docs = append(s.docs, doc)
	return doc, true, nil
}

func (s *MemoryStore) FetchDocumentsByLanguage(_ context.Context, lang string) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []document.Document
	for _, d := range s.docs {
		if d.Language == lang {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemoryStore) Languages(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, d := range s.docs {
		seen[d.Language] = struct{}{}
	}
	langs := make([]string, 0, len(seen))
	for l := range seen {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
