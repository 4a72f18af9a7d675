package segment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/index"
)

func sampleIndex() ([]index.TermEntry, []index.StoredDoc) {
	m := index.NewMemoryIndex(0)
	m.AddDocument(index.StoredDoc{Title: "India Overview", URL: "u1", Text: "India Overview"}, []string{"india", "overview"})
	m.AddDocument(index.StoredDoc{Title: "India Trade", URL: "u2", Text: "India Trade india"}, []string{"india", "trade", "india"})
	return m.Entries(), m.Docs()
}

func TestWriteOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries, docs := sampleIndex()
	path, err := NewWriter(dir).Write(entries, docs, 7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), s.Generation())
	assert.Equal(t, 2, s.DocCount())
	assert.Equal(t, []string{"india", "overview", "trade"}, s.Terms())
	assert.InDelta(t, 2.5, s.AvgDocLength(), 1e-9)

	postings, err := s.Search("india")
	require.NoError(t, err)
	assert.Equal(t, index.PostingList{{DocID: 0, Frequency: 1}, {DocID: 1, Frequency: 2}}, postings)

	missing, err := s.Search("absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	doc, ok := s.Doc(1)
	require.True(t, ok)
	assert.Equal(t, "u2", doc.URL)
	assert.True(t, s.HasURL("u1"))
	assert.True(t, s.Contains("trade"))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file must not survive a commit")
}

func TestWriteEmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	path, err := NewWriter(dir).Write(nil, nil, 1)
	require.NoError(t, err)
	s, err := Open(path)
	require.NoError(t, err)
	assert.Zero(t, s.DocCount())
	assert.Empty(t, s.Terms())
	assert.Zero(t, s.AvgDocLength())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestOpenDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	entries, docs := sampleIndex()
	path, err := NewWriter(dir).Write(entries, docs, 1)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	flipped := append([]byte(nil), data...)
	flipped[HeaderSize+2] ^= 0xff
	require.NoError(t, os.WriteFile(path, flipped, 0644))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, os.WriteFile(path, data[:HeaderSize], 0644))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, os.WriteFile(path, []byte("definitely not a snapshot file at all, just some text padding it out to length"), 0644))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestEntriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries, docs := sampleIndex()
	path, err := NewWriter(dir).Write(entries, docs, 1)
	require.NoError(t, err)
	s, err := Open(path)
	require.NoError(t, err)

	got, err := s.Entries()
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestEmpty(t *testing.T) {
	s := Empty(0)
	assert.Zero(t, s.DocCount())
	postings, err := s.Search("x")
	assert.NoError(t, err)
	assert.Nil(t, postings)
	_, ok := s.Doc(0)
	assert.False(t, ok)
}
