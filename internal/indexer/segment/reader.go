package segment

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
)

// ErrCorrupt is returned by Open when a snapshot file exists but fails its
// magic, checksum or decoding checks.
var ErrCorrupt = errors.New("corrupt snapshot")

// Snapshot is an immutable, fully loaded view of one committed partition.
// Postings are decoded lazily from the file image; the dictionary and stored
// documents are decoded once at open.
type Snapshot struct {
	path     string
	header   Header
	data     []byte
	postBase int64
	dict     []DictEntry
	terms    []string
	docs     []index.StoredDoc
	urls     map[string]uint32
}

// Empty returns a snapshot with no documents, used before the first commit.
func Empty(generation uint64) *Snapshot {
	return &Snapshot{
		header: Header{Magic: MagicBytes, Version: FormatVersion, Generation: generation},
		urls:   map[string]uint32{},
	}
}

// Open reads and validates the snapshot at path. A missing file returns an
// error satisfying errors.Is(err, os.ErrNotExist); anything unreadable
// returns ErrCorrupt.
func Open(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, path, err)
	}
	s, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	s.path = path
	return s, nil
}

func decode(data []byte) (*Snapshot, error) {
	if len(data) < HeaderSize+FooterSize {
		return nil, fmt.Errorf("file too short (%d bytes)", len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicBytes {
		return nil, fmt.Errorf("bad magic bytes %x", magic)
	}
	footer := data[len(data)-FooterSize:]
	crc := crc32.NewIEEE()
	crc.Write(data[:len(data)-FooterSize])
	crc.Write(footer[4:])
	if got, want := crc.Sum32(), binary.LittleEndian.Uint32(footer[0:4]); got != want {
		return nil, fmt.Errorf("checksum mismatch: got %08x want %08x", got, want)
	}

	header := Header{
		Magic:       magic,
		Version:     binary.LittleEndian.Uint32(data[4:8]),
		TermCount:   binary.LittleEndian.Uint32(data[8:12]),
		DocCount:    binary.LittleEndian.Uint32(data[12:16]),
		CreatedAt:   int64(binary.LittleEndian.Uint64(data[16:24])),
		Generation:  binary.LittleEndian.Uint64(data[24:32]),
		TotalTokens: int64(binary.LittleEndian.Uint64(data[32:40])),
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", header.Version)
	}
	postSize := int64(binary.LittleEndian.Uint64(footer[8:16]))
	dictSize := int64(binary.LittleEndian.Uint64(footer[16:24]))
	docsSize := int64(binary.LittleEndian.Uint64(footer[24:32]))
	postBase := int64(HeaderSize)
	dictStart := postBase + postSize
	docsStart := dictStart + dictSize
	if docsStart+docsSize != int64(len(data)-FooterSize) {
		return nil, fmt.Errorf("section sizes do not match file length")
	}

	var dict []DictEntry
	if err := json.Unmarshal(data[dictStart:docsStart], &dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	var docs []index.StoredDoc
	if err := json.Unmarshal(data[docsStart:docsStart+docsSize], &docs); err != nil {
		return nil, fmt.Errorf("parsing stored documents: %w", err)
	}
	if len(dict) != int(header.TermCount) || len(docs) != int(header.DocCount) {
		return nil, fmt.Errorf("header counts disagree with sections")
	}

	terms := make([]string, len(dict))
	for i, e := range dict {
		if e.PostOffset < 0 || e.PostOffset+int64(e.PostLen) > postSize {
			return nil, fmt.Errorf("postings for %q out of range", e.Term)
		}
		terms[i] = e.Term
	}
	urls := make(map[string]uint32, len(docs))
	for i, d := range docs {
		urls[d.URL] = uint32(i)
	}
	return &Snapshot{
		header:   header,
		data:     data,
		postBase: postBase,
		dict:     dict,
		terms:    terms,
		docs:     docs,
		urls:     urls,
	}, nil
}

// Search returns the postings for term, or nil if the term is absent.
func (s *Snapshot) Search(term string) (index.PostingList, error) {
	idx := sort.SearchStrings(s.terms, term)
	if idx >= len(s.terms) || s.terms[idx] != term {
		return nil, nil
	}
	entry := s.dict[idx]
	start := s.postBase + entry.PostOffset
	var postings index.PostingList
	if err := json.Unmarshal(s.data[start:start+int64(entry.PostLen)], &postings); err != nil {
		return nil, fmt.Errorf("%w: parsing postings for %q: %v", ErrCorrupt, term, err)
	}
	return postings, nil
}

// Contains reports whether term is in the vocabulary.
func (s *Snapshot) Contains(term string) bool {
	idx := sort.SearchStrings(s.terms, term)
	return idx < len(s.terms) && s.terms[idx] == term
}

// Entries decodes every postings list, in term order.
func (s *Snapshot) Entries() ([]index.TermEntry, error) {
	entries := make([]index.TermEntry, 0, len(s.terms))
	for _, term := range s.terms {
		postings, err := s.Search(term)
		if err != nil {
			return nil, err
		}
		entries = append(entries, index.TermEntry{Term: term, Postings: postings})
	}
	return entries, nil
}

// Terms returns the sorted vocabulary. The slice is shared and must not be
// modified.
func (s *Snapshot) Terms() []string {
	return s.terms
}

// Doc returns the stored fields for docID.
func (s *Snapshot) Doc(docID uint32) (index.StoredDoc, bool) {
	if int(docID) >= len(s.docs) {
		return index.StoredDoc{}, false
	}
	return s.docs[docID], true
}

// Docs returns all stored documents in DocID order. The slice is shared.
func (s *Snapshot) Docs() []index.StoredDoc {
	return s.docs
}

func (s *Snapshot) HasURL(url string) bool {
	_, ok := s.urls[url]
	return ok
}

func (s *Snapshot) DocCount() int {
	return len(s.docs)
}

func (s *Snapshot) TotalTokens() int64 {
	return s.header.TotalTokens
}

func (s *Snapshot) AvgDocLength() float64 {
	if len(s.docs) == 0 {
		return 0
	}
	return float64(s.header.TotalTokens) / float64(len(s.docs))
}

func (s *Snapshot) Generation() uint64 {
	return s.header.Generation
}

func (s *Snapshot) Header() Header {
	return s.header
}
