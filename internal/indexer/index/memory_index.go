package index

import (
	"sort"
)

// MemoryIndex buffers documents added since the last commit. DocIDs
// continue from the base the buffer was created with, so merging it after
// a committed snapshot keeps every postings list sorted.
//
// MemoryIndex is not safe for concurrent use; the owning partition
// serialises writers.
type MemoryIndex struct {
	base        uint32
	index       map[string]PostingList
	docs        []StoredDoc
	urls        map[string]struct{}
	totalTokens int64
}

func NewMemoryIndex(base uint32) *MemoryIndex {
	return &MemoryIndex{
		base:  base,
		index: make(map[string]PostingList),
		urls:  make(map[string]struct{}),
	}
}

// AddDocument stores doc and the postings for terms, returning the DocID
// assigned to it.
func (m *MemoryIndex) AddDocument(doc StoredDoc, terms []string) uint32 {
	docID := m.base + uint32(len(m.docs))

	freqs := make(map[string]int, len(terms))
	for _, term := range terms {
		freqs[term]++
	}
	for term, freq := range freqs {
		m.index[term] = append(m.index[term], Posting{DocID: docID, Frequency: freq})
	}

	doc.Length = len(terms)
	m.docs = append(m.docs, doc)
	m.urls[doc.URL] = struct{}{}
	m.totalTokens += int64(len(terms))
	return docID
}

func (m *MemoryIndex) HasURL(url string) bool {
	_, ok := m.urls[url]
	return ok
}

func (m *MemoryIndex) Search(term string) PostingList {
	return m.index[term]
}

// Entries returns every term with its postings, sorted by term.
func (m *MemoryIndex) Entries() []TermEntry {
	entries := make([]TermEntry, 0, len(m.index))
	for term, postings := range m.index {
		entries = append(entries, TermEntry{Term: term, Postings: postings})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

func (m *MemoryIndex) Docs() []StoredDoc {
	return m.docs
}

func (m *MemoryIndex) Base() uint32 {
	return m.base
}

func (m *MemoryIndex) DocCount() int {
	return len(m.docs)
}

func (m *MemoryIndex) TotalTokens() int64 {
	return m.totalTokens
}

// MergeEntries appends the postings of later (whose DocIDs all follow
// those in earlier) to earlier, term by term. Both inputs must be sorted
// by term; the result is too.
func MergeEntries(earlier, later []TermEntry) []TermEntry {
	out := make([]TermEntry, 0, len(earlier)+len(later))
	i, j := 0, 0
	for i < len(earlier) && j < len(later) {
		switch {
		case earlier[i].Term < later[j].Term:
			out = append(out, earlier[i])
			i++
		case earlier[i].Term > later[j].Term:
			out = append(out, later[j])
			j++
		default:
			merged := make(PostingList, 0, len(earlier[i].Postings)+len(later[j].Postings))
			merged = append(merged, earlier[i].Postings...)
			merged = append(merged, later[j].Postings...)
			out = append(out, TermEntry{Term: earlier[i].Term, Postings: merged})
			i++
			j++
		}
	}
	out = append(out, earlier[i:]...)
	out = append(out, later[j:]...)
	return out
}
