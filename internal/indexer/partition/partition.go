// Package partition implements a per-language inverted index with
// single-writer, multi-reader snapshot isolation. Adds accumulate in an
// in-memory buffer; Commit writes a new snapshot file atomically and then
// publishes it with a single pointer swap. Readers pin whichever snapshot
// was current when they called Snapshot and never block the writer.
package partition

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
)

type Partition struct {
	lang     string
	dir      string
	analyzer *analyzer.Analyzer
	writer   *segment.Writer
	logger   *slog.Logger

	current atomic.Pointer[segment.Snapshot]

	mu       sync.Mutex
	staged   *index.MemoryIndex
	reset    bool
	modStamp fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// Dir returns the directory holding the partition for lang under root.
func Dir(root, lang string) string {
	return filepath.Join(root, lang)
}

// OpenOrCreate opens the partition for lang under root, creating and
// committing an empty one if none exists. It is idempotent. An unreadable
// snapshot is treated as empty and reset, so the next Commit overwrites it.
func OpenOrCreate(root, lang string, an *analyzer.Analyzer) (*Partition, error) {
	p := newPartition(root, lang, an)
	snap, err := segment.Open(p.writer.Path())
	switch {
	case err == nil:
		p.install(snap)
		return p, nil
	case errors.Is(err, os.ErrNotExist):
		if _, err := p.writer.Write(nil, nil, 1); err != nil {
			return nil, fmt.Errorf("creating partition %s: %w", lang, err)
		}
		if _, err := p.Reload(); err != nil {
			return nil, err
		}
		p.logger.Info("partition created", "dir", p.dir)
		return p, nil
	default:
		p.logger.Error("partition snapshot unreadable, next commit replaces it",
			"dir", p.dir,
			"error", fmt.Errorf("%w: %v", apperrors.ErrPartitionCorrupt, err),
		)
		p.install(segment.Empty(0))
		p.reset = true
		return p, nil
	}
}

// Open opens an existing partition read-only. It returns ErrPartitionMissing
// when nothing has been built for lang and ErrPartitionCorrupt when the
// snapshot cannot be read.
func Open(root, lang string, an *analyzer.Analyzer) (*Partition, error) {
	p := newPartition(root, lang, an)
	snap, err := segment.Open(p.writer.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("partition %s: %w", lang, apperrors.ErrPartitionMissing)
		}
		return nil, fmt.Errorf("partition %s: %w: %v", lang, apperrors.ErrPartitionCorrupt, err)
	}
	p.install(snap)
	return p, nil
}

func newPartition(root, lang string, an *analyzer.Analyzer) *Partition {
	dir := Dir(root, lang)
	return &Partition{
		lang:     lang,
		dir:      dir,
		analyzer: an,
		writer:   segment.NewWriter(dir),
		logger:   slog.Default().With("component", "partition", "language", lang),
	}
}

// install makes snap current and starts a fresh staging buffer after it.
// Callers hold mu or own p exclusively.
func (p *Partition) install(snap *segment.Snapshot) {
	p.current.Store(snap)
	p.staged = index.NewMemoryIndex(uint32(snap.DocCount()))
	p.reset = false
	if info, err := os.Stat(p.writer.Path()); err == nil {
		p.modStamp = fileStamp{modTime: info.ModTime(), size: info.Size()}
	}
}

func (p *Partition) Language() string {
	return p.lang
}

// Add stages doc for the next commit. The searchable field is
// title + " " + body; the title is analysed on its own to decide what to
// display. A URL already present in the partition is ignored and reported
// as ErrDuplicateURL.
func (p *Partition) Add(doc document.Document) error {
	url := strings.TrimSpace(doc.URL)
	if url == "" {
		return fmt.Errorf("%w: empty url", apperrors.ErrMalformedDocument)
	}
	if !utf8.ValidString(doc.Title) || !utf8.ValidString(doc.Body) {
		return fmt.Errorf("%w: %s: invalid utf-8", apperrors.ErrMalformedDocument, url)
	}
	text := doc.SearchableText()
	terms := p.analyzer.Terms(text, p.lang)
	if len(terms) == 0 {
		return fmt.Errorf("%w: %s: no indexable text", apperrors.ErrMalformedDocument, url)
	}
	title := strings.TrimSpace(doc.Title)
	if len(p.analyzer.Tokenize(title, p.lang)) == 0 {
		title = url
	}
	stored := index.StoredDoc{
		ExternalID: doc.ID,
		Title:      title,
		URL:        url,
		Text:       text,
	}
	if !doc.CreatedAt.IsZero() {
		stored.CreatedAt = doc.CreatedAt.Unix()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.staged.HasURL(url) || (!p.reset && p.current.Load().HasURL(url)) {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateURL, url)
	}
	docID := p.staged.AddDocument(stored, terms)
	p.logger.Debug("document staged", "url", url, "doc_id", docID, "token_count", len(terms))
	return nil
}

// Reset makes the next commit publish only documents added after this
// call, discarding the committed contents. Builders call it before a full
// rebuild.
func (p *Partition) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.staged = index.NewMemoryIndex(0)
	p.reset = true
}

// Commit publishes every add since the last commit (or since Reset) as a
// new immutable snapshot. It is a no-op when nothing is staged.
func (p *Partition) Commit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.staged.DocCount() == 0 && !p.reset {
		return nil
	}
	start := time.Now()
	prev := p.current.Load()

	entries := p.staged.Entries()
	docs := p.staged.Docs()
	if !p.reset {
		baseEntries, err := prev.Entries()
		if err != nil {
			return fmt.Errorf("reading committed postings: %w", err)
		}
		entries = index.MergeEntries(baseEntries, entries)
		merged := make([]index.StoredDoc, 0, prev.DocCount()+len(docs))
		merged = append(merged, prev.Docs()...)
		docs = append(merged, docs...)
	}

	path, err := p.writer.Write(entries, docs, prev.Generation()+1)
	if err != nil {
		return fmt.Errorf("committing partition %s: %w", p.lang, err)
	}
	snap, err := segment.Open(path)
	if err != nil {
		return fmt.Errorf("reopening committed partition %s: %w", p.lang, err)
	}
	p.install(snap)
	p.logger.Info("partition committed",
		"generation", snap.Generation(),
		"docs", snap.DocCount(),
		"terms", len(snap.Terms()),
		"avg_doc_length", snap.AvgDocLength(),
		"duration", time.Since(start),
	)
	return nil
}

// Reload picks up a snapshot committed by another process. It reports
// whether the current snapshot changed. Staged adds are discarded.
func (p *Partition) Reload() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := os.Stat(p.writer.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("partition %s: %w", p.lang, apperrors.ErrPartitionMissing)
		}
		return false, fmt.Errorf("partition %s: %w: %v", p.lang, apperrors.ErrPartitionCorrupt, err)
	}
	stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}
	prev := p.current.Load()
	if prev != nil && stamp == p.modStamp {
		return false, nil
	}
	snap, err := segment.Open(p.writer.Path())
	if err != nil {
		return false, fmt.Errorf("partition %s: %w: %v", p.lang, apperrors.ErrPartitionCorrupt, err)
	}
	p.install(snap)
	return prev == nil || prev.Generation() != snap.Generation(), nil
}

// Snapshot returns the latest committed snapshot. It never blocks.
func (p *Partition) Snapshot() *segment.Snapshot {
	return p.current.Load()
}

// SearchTerm returns the committed postings for an already-normalised term.
func (p *Partition) SearchTerm(term string) (index.PostingList, error) {
	return p.Snapshot().Search(term)
}

// Vocabulary returns the committed terms in sorted order.
func (p *Partition) Vocabulary() []string {
	return p.Snapshot().Terms()
}

func (p *Partition) DocCount() int {
	return p.Snapshot().DocCount()
}

func (p *Partition) AvgDocLength() float64 {
	return p.Snapshot().AvgDocLength()
}

// Staged returns the number of uncommitted adds.
func (p *Partition) Staged() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staged.DocCount()
}
