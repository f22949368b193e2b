package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ragforge/pdfrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records what gets stored and serves it back for searches.
type fakeStore struct {
	storeCalls int
	collection string
	chunks     []types.DocumentChunk
	storeErr   error
}

func (s *fakeStore) Store(ctx context.Context, collectionName string, chunks []types.DocumentChunk) (*types.StoreResult, error) {
	s.storeCalls++
	s.collection = collectionName
	s.chunks = chunks
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	return &types.StoreResult{
		Status:         types.StatusSuccess,
		CollectionName: collectionName,
		DocumentCount:  len(chunks),
		SavePath:       filepath.Join("vectorstore", collectionName),
		EmbeddingModel: "fake-model",
	}, nil
}

func (s *fakeStore) Search(ctx context.Context, collectionName string, query string, k int) ([]types.SearchResult, error) {
	return nil, nil
}

func newTestPipeline(store *fakeStore) *PipelineService {
	chunker := NewChunkerService(types.DocumentServiceConfig{
		MaxChunkSize: 3000,
		Strategy:     StrategyParagraph,
	}, nil)
	return NewPipelineService(
		NewValidatorService(),
		NewPDFService(),
		NewMarkdownService(nil),
		NewSplitterService(),
		chunker,
		store,
	)
}

func TestPipelineFullRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.pdf")
	writeTestPDF(t, path, []string{
		"INTRODUCTION",
		"This chapter describes the system in plain prose.",
	})

	store := &fakeStore{}
	pipeline := newTestPipeline(store)

	var stages []types.PipelineStage
	state := pipeline.Run(context.Background(), path, "manual.pdf", "manuals", func(status types.ProcessingDocumentStatus) {
		stages = append(stages, status.Stage)
	})

	require.True(t, state.Done(), "pipeline failed: %s at %s", state.ErrorMessage, state.FailingStage)
	assert.Equal(t, 2, state.PageCount)
	assert.Equal(t, types.StatusSuccess, state.ChunkingStatus)
	assert.Equal(t, types.StatusSuccess, state.EmbeddingStatus)
	require.NotNil(t, state.VectorStoreInfo)
	assert.Equal(t, "manuals", state.VectorStoreInfo.CollectionName)

	require.Equal(t, 1, store.storeCalls)
	assert.Equal(t, "manuals", store.collection)
	require.NotEmpty(t, store.chunks)
	for _, chunk := range store.chunks {
		assert.NotEmpty(t, chunk.Content)
		assert.Equal(t, "manual.pdf", chunk.Metadata.Source)
	}

	// Progress reports walk the stages in order, ending with DONE.
	require.NotEmpty(t, stages)
	assert.Equal(t, types.StageValidating, stages[0])
	assert.Equal(t, types.StageDone, stages[len(stages)-1])
}

func TestPipelineHeaderPageFlowsIntoChunkMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.pdf")
	writeTestPDF(t, path, []string{
		"FIRST SECTION",
		"Body text that belongs to the first section.",
	})

	store := &fakeStore{}
	pipeline := newTestPipeline(store)
	state := pipeline.Run(context.Background(), path, "sections.pdf", "docs", nil)
	require.True(t, state.Done(), "pipeline failed: %s at %s", state.ErrorMessage, state.FailingStage)

	require.NotEmpty(t, store.chunks)
	chunk := store.chunks[0]
	assert.Equal(t, "FIRST SECTION", chunk.Metadata.Headers[types.HeaderKey2])
	assert.Equal(t, 2, chunk.Metadata.Page, "body text lives on page 2")
}

func TestPipelineGateBlocksInvalidDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0644))

	store := &fakeStore{}
	pipeline := newTestPipeline(store)
	state := pipeline.Run(context.Background(), path, "broken.pdf", "docs", nil)

	require.True(t, state.Failed())
	assert.Equal(t, types.StageValidating, state.FailingStage)
	require.NotNil(t, state.Validation)
	assert.Equal(t, types.ValidationFail, state.Validation.Status)
	assert.Zero(t, store.storeCalls, "nothing may be stored for a rejected document")
	assert.Zero(t, state.PageCount, "extraction must not run for a rejected document")
}

func TestPipelineMissingFile(t *testing.T) {
	store := &fakeStore{}
	pipeline := newTestPipeline(store)
	state := pipeline.Run(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), "nope.pdf", "docs", nil)

	require.True(t, state.Failed())
	assert.Equal(t, types.StageValidating, state.FailingStage)
	assert.Zero(t, store.storeCalls)
}

func TestPipelineEmbeddingFailureAttribution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writeTestPDF(t, path, []string{"Some content to index."})

	store := &fakeStore{storeErr: &types.ServiceError{Op: "create embeddings", Err: errors.New("api down")}}
	pipeline := newTestPipeline(store)
	state := pipeline.Run(context.Background(), path, "doc.pdf", "docs", nil)

	require.True(t, state.Failed())
	assert.Equal(t, types.StageEmbedding, state.FailingStage)
	assert.Equal(t, types.StatusFail, state.EmbeddingStatus)
}

func TestPipelineStorageFailureAttribution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writeTestPDF(t, path, []string{"Some content to index."})

	store := &fakeStore{storeErr: &types.StorageError{Op: "write collection", Err: errors.New("disk full")}}
	pipeline := newTestPipeline(store)
	state := pipeline.Run(context.Background(), path, "doc.pdf", "docs", nil)

	require.True(t, state.Failed())
	assert.Equal(t, types.StageStoring, state.FailingStage)
	assert.Equal(t, types.StatusSuccess, state.EmbeddingStatus)
}

func TestPipelineRunIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writeTestPDF(t, path, []string{"Stable content for repeat runs."})

	store := &fakeStore{}
	pipeline := newTestPipeline(store)

	first := pipeline.Run(context.Background(), path, "doc.pdf", "docs", nil)
	require.True(t, first.Done())
	firstChunks := append([]types.DocumentChunk(nil), store.chunks...)

	second := pipeline.Run(context.Background(), path, "doc.pdf", "docs", nil)
	require.True(t, second.Done())

	assert.Equal(t, firstChunks, store.chunks, "re-ingesting the same file yields the same chunks")
	assert.Equal(t, first.TotalChunks, second.TotalChunks)
}
