package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ragforge/pdfrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns a fixed vector per text so similarity ordering is
// fully deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := e.vectors[text]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func (e *fakeEmbedder) ModelName() string { return "fake-embedding-model" }

func newTestStore(t *testing.T) (*LocalStore, *fakeEmbedder) {
	t.Helper()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha text": {1, 0, 0},
		"beta text":  {0, 1, 0},
		"gamma text": {0.9, 0.1, 0},
		"query":      {1, 0, 0},
	}}
	store, err := NewLocalStore(t.TempDir(), embedder)
	require.NoError(t, err)
	return store, embedder
}

func testChunks() []types.DocumentChunk {
	return []types.DocumentChunk{
		{Content: "alpha text", Metadata: types.ChunkMetadata{Page: 1, Source: "doc.pdf"}},
		{Content: "beta text", Metadata: types.ChunkMetadata{Page: 2, Source: "doc.pdf"}},
		{Content: "gamma text", Metadata: types.ChunkMetadata{Page: 3, Source: "doc.pdf", Headers: map[string]string{types.HeaderKey2: "Results"}}},
	}
}

func TestStoreAndSearch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	result, err := store.Store(ctx, "docs", testChunks())
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, result.Status)
	assert.Equal(t, "docs", result.CollectionName)
	assert.Equal(t, 3, result.DocumentCount)
	assert.Equal(t, "fake-embedding-model", result.EmbeddingModel)
	assert.DirExists(t, result.SavePath)

	results, err := store.Search(ctx, "docs", "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Descending similarity: alpha matches the query vector exactly, gamma
	// is close, beta is orthogonal and excluded by k=2.
	assert.Equal(t, "alpha text", results[0].Content)
	assert.Equal(t, "gamma text", results[1].Content)
	assert.Greater(t, results[0].SimilarityScore, results[1].SimilarityScore)

	assert.Equal(t, 3, results[1].Metadata.Page)
	assert.Equal(t, "Results", results[1].Metadata.Headers[types.HeaderKey2])
}

func TestSearchUnknownCollection(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Search(context.Background(), "missing", "query", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCollectionNotFound)
}

func TestStoreEmptyChunks(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Store(context.Background(), "docs", nil)
	assert.ErrorIs(t, err, types.ErrEmptyInput)
}

func TestSearchEmptyQuery(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Search(context.Background(), "docs", "   ", 5)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestSearchKLargerThanCollection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Store(ctx, "docs", testChunks())
	require.NoError(t, err)

	results, err := store.Search(ctx, "docs", "query", 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchDefaultK(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Store(ctx, "docs", testChunks())
	require.NoError(t, err)

	results, err := store.Search(ctx, "docs", "query", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3, "k defaults to 5, capped at collection size")
}

func TestStoreOverwritesCollection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Store(ctx, "docs", testChunks())
	require.NoError(t, err)

	_, err = store.Store(ctx, "docs", []types.DocumentChunk{
		{Content: "alpha text", Metadata: types.ChunkMetadata{Source: "new.pdf"}},
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, "docs", "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "store replaces the collection wholesale")
	assert.Equal(t, "new.pdf", results[0].Metadata.Source)
}

func TestSearchIsDeterministic(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Store(ctx, "docs", testChunks())
	require.NoError(t, err)

	first, err := store.Search(ctx, "docs", "query", 3)
	require.NoError(t, err)
	second, err := store.Search(ctx, "docs", "query", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCollectionIsLoadableByNameAlone(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha text": {1, 0, 0},
		"query":      {1, 0, 0},
	}}
	root := t.TempDir()

	store, err := NewLocalStore(root, embedder)
	require.NoError(t, err)
	_, err = store.Store(context.Background(), "docs", []types.DocumentChunk{
		{Content: "alpha text"},
	})
	require.NoError(t, err)

	// A fresh store over the same root finds the collection on disk.
	reopened, err := NewLocalStore(root, embedder)
	require.NoError(t, err)
	results, err := reopened.Search(context.Background(), "docs", "query", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha text", results[0].Content)
}

func TestInvalidCollectionName(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		_, err := store.Store(ctx, name, testChunks())
		assert.Error(t, err, "name %q must be rejected", name)
	}
}

func TestStoreWritesMetaFile(t *testing.T) {
	store, _ := newTestStore(t)

	result, err := store.Store(context.Background(), "docs", testChunks())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(result.SavePath, metaFile))
	assert.NoError(t, err)
}
