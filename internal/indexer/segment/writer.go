package segment

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
)

// MagicBytes identifies a valid .spdx snapshot file.
const (
	MagicBytes    uint32 = 0x53504458
	FormatVersion uint32 = 2
	HeaderSize    int    = 64
	FooterSize    int    = 32
	FileName             = "snapshot.spdx"
)

// Header is the fixed-size block at the start of every snapshot file.
//
//	0:4   magic
//	4:8   version
//	8:12  term count
//	12:16 doc count
//	16:24 created at (unix seconds)
//	24:32 generation
//	32:40 total tokens
//
// The footer holds the CRC32 of everything else followed by the sizes of
// the postings, dictionary and stored-docs sections.
type Header struct {
	Magic       uint32
	Version     uint32
	TermCount   uint32
	DocCount    uint32
	CreatedAt   int64
	Generation  uint64
	TotalTokens int64
}

// DictEntry maps a term to its postings offset, length, and document
// frequency in the snapshot file.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

// Writer serialises a partition's terms and stored documents into its
// snapshot file.
type Writer struct {
	dataDir string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

func (w *Writer) Path() string {
	return filepath.Join(w.dataDir, FileName)
}

// Write replaces the snapshot file atomically: the new contents go to a
// .tmp file which is synced and then renamed over the previous snapshot.
// A crash leaves either the old or the new file, never a mix.
func (w *Writer) Write(entries []index.TermEntry, docs []index.StoredDoc, generation uint64) (string, error) {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return "", fmt.Errorf("creating partition directory: %w", err)
	}
	finalPath := w.Path()
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp snapshot file: %w", err)
	}
	defer os.Remove(tmpPath)
	defer f.Close()

	if err := encode(f, entries, docs, generation); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("renaming snapshot file: %w", err)
	}
	syncDir(w.dataDir)
	return finalPath, nil
}

func encode(out io.Writer, entries []index.TermEntry, docs []index.StoredDoc, generation uint64) error {
	bw := bufio.NewWriter(out)
	crc := crc32.NewIEEE()
	cw := &countingWriter{w: io.MultiWriter(bw, crc)}

	var totalTokens int64
	for _, d := range docs {
		totalTokens += int64(d.Length)
	}
	headerBytes := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(headerBytes[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(headerBytes[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(headerBytes[8:12], uint32(len(entries)))
	binary.LittleEndian.PutUint32(headerBytes[12:16], uint32(len(docs)))
	binary.LittleEndian.PutUint64(headerBytes[16:24], uint64(time.Now().Unix()))
	binary.LittleEndian.PutUint64(headerBytes[24:32], generation)
	binary.LittleEndian.PutUint64(headerBytes[32:40], uint64(totalTokens))
	if _, err := cw.Write(headerBytes); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	postingsStart := cw.n
	dict := make([]DictEntry, 0, len(entries))
	for _, entry := range entries {
		offset := cw.n - postingsStart
		postingsData, err := json.Marshal(entry.Postings)
		if err != nil {
			return fmt.Errorf("marshaling postings for term %q: %w", entry.Term, err)
		}
		if _, err := cw.Write(postingsData); err != nil {
			return fmt.Errorf("writing postings for term %q: %w", entry.Term, err)
		}
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: offset,
			PostLen:    len(postingsData),
			DocFreq:    len(entry.Postings),
		})
	}
	postingsSize := cw.n - postingsStart

	dictData, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("marshaling dictionary: %w", err)
	}
	if _, err := cw.Write(dictData); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}

	docsData, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshaling stored documents: %w", err)
	}
	if _, err := cw.Write(docsData); err != nil {
		return fmt.Errorf("writing stored documents: %w", err)
	}

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint64(footer[8:16], uint64(postingsSize))
	binary.LittleEndian.PutUint64(footer[16:24], uint64(len(dictData)))
	binary.LittleEndian.PutUint64(footer[24:32], uint64(len(docsData)))
	crc.Write(footer[4:])
	binary.LittleEndian.PutUint32(footer[0:4], crc.Sum32())
	if _, err := bw.Write(footer); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
