package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/errors"
)

func TestGetMissingIsNotCached(t *testing.T) {
	root := t.TempDir()
	r := New(root, analyzer.New())

	_, err := r.Get("hi")
	assert.ErrorIs(t, err, apperrors.ErrPartitionMissing)

	_, err = r.OpenOrCreate("hi")
	require.NoError(t, err)

	p, err := r.Get("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", p.Language())
}

func TestLanguagesListsBuiltPartitions(t *testing.T) {
	root := t.TempDir()
	r := New(root, analyzer.New())
	for _, lang := range []string{"te", "en"} {
		_, err := r.OpenOrCreate(lang)
		require.NoError(t, err)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-dir"), 0755))

	langs, err := r.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "te"}, langs)

	none, err := New(filepath.Join(root, "nope"), analyzer.New()).Languages()
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRefreshPicksUpExternalCommits(t *testing.T) {
	root := t.TempDir()
	builder := New(root, analyzer.New())
	searcher := New(root, analyzer.New())

	w, err := builder.OpenOrCreate("en")
	require.NoError(t, err)
	snap, err := searcher.Snapshot("en")
	require.NoError(t, err)
	assert.Zero(t, snap.DocCount())
	assert.Empty(t, searcher.Refresh())

	require.NoError(t, w.Add(document.Document{URL: "u1", Title: "India Overview", Language: "en"}))
	require.NoError(t, w.Commit())

	assert.Equal(t, []string{"en"}, searcher.Refresh())
	snap, err = searcher.Snapshot("en")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.DocCount())
}

func TestRefreshEvictsCorruptPartition(t *testing.T) {
	root := t.TempDir()
	r := New(root, analyzer.New())
	_, err := r.OpenOrCreate("ta")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "ta", segment.FileName), []byte("broken"), 0644))
	assert.Equal(t, []string{"ta"}, r.Refresh())

	_, err = r.Get("ta")
	assert.ErrorIs(t, err, apperrors.ErrPartitionCorrupt)
}
