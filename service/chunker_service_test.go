package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ragforge/pdfrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraphChunker(maxChunkSize int) *ChunkerService {
	return NewChunkerService(types.DocumentServiceConfig{
		MaxChunkSize: maxChunkSize,
		Strategy:     StrategyParagraph,
	}, nil)
}

func TestChunkSmallSegmentPassesThrough(t *testing.T) {
	s := paragraphChunker(3000)

	segments := []types.Segment{
		{
			Content: "short segment",
			Headers: map[string]string{types.HeaderKey2: "Intro"},
			Page:    2,
		},
	}
	chunks, err := s.Chunk(context.Background(), segments, "doc.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, "short segment", chunks[0].Content)
	assert.Equal(t, "Intro", chunks[0].Metadata.Headers[types.HeaderKey2])
	assert.Equal(t, 2, chunks[0].Metadata.Page)
	assert.Equal(t, "doc.pdf", chunks[0].Metadata.Source)
}

func TestChunkParagraphPacking(t *testing.T) {
	s := paragraphChunker(3000)

	// 2000 + 2 + 1500 > 3000, so the two paragraphs cannot share a chunk.
	paraA := strings.Repeat("a", 2000)
	paraB := strings.Repeat("b", 1500)
	segments := []types.Segment{
		{Content: paraA + "\n\n" + paraB},
	}

	chunks, err := s.Chunk(context.Background(), segments, "doc.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, paraA, chunks[0].Content)
	assert.Equal(t, paraB, chunks[1].Content)
}

func TestChunkParagraphsThatFitStayTogether(t *testing.T) {
	s := paragraphChunker(3000)

	// Segment must exceed maxChunkSize to trigger splitting at all; the
	// first two paragraphs then pack into one chunk.
	paraA := strings.Repeat("a", 1000)
	paraB := strings.Repeat("b", 1000)
	paraC := strings.Repeat("c", 1500)
	segments := []types.Segment{
		{Content: paraA + "\n\n" + paraB + "\n\n" + paraC},
	}

	chunks, err := s.Chunk(context.Background(), segments, "doc.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, paraA+"\n\n"+paraB, chunks[0].Content)
	assert.Equal(t, paraC, chunks[1].Content)
}

func TestChunkOversizedParagraphEmittedWhole(t *testing.T) {
	s := paragraphChunker(100)

	huge := strings.Repeat("x", 500)
	chunks, err := s.Chunk(context.Background(), []types.Segment{{Content: huge}}, "doc.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, huge, chunks[0].Content)
}

func TestChunkMetadataSharedAcrossSplits(t *testing.T) {
	s := paragraphChunker(1000)

	headers := map[string]string{types.HeaderKey1: "Title", types.HeaderKey2: "Section"}
	content := strings.Repeat("a", 800) + "\n\n" + strings.Repeat("b", 800)
	chunks, err := s.Chunk(context.Background(), []types.Segment{
		{Content: content, Headers: headers, Page: 4},
	}, "report.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	for _, chunk := range chunks {
		assert.Equal(t, headers, chunk.Metadata.Headers)
		assert.Equal(t, 4, chunk.Metadata.Page)
		assert.Equal(t, "report.pdf", chunk.Metadata.Source)
	}
}

func TestChunkWindowStrategyBoundsSize(t *testing.T) {
	s := NewChunkerService(types.DocumentServiceConfig{
		MaxChunkSize: 200,
		ChunkOverlap: 20,
		Strategy:     StrategyWindow,
	}, nil)

	sentence := "This is a sentence that keeps going for a while. "
	content := strings.Repeat(sentence, 20)
	chunks, err := s.Chunk(context.Background(), []types.Segment{{Content: content}}, "doc.pdf")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 200, "chunk %d exceeds the window size", i)
		assert.NotEmpty(t, chunk.Content)
	}
}

func TestChunkUnknownStrategy(t *testing.T) {
	s := NewChunkerService(types.DocumentServiceConfig{
		MaxChunkSize: 100,
		Strategy:     "mystery",
	}, nil)

	_, err := s.Chunk(context.Background(), []types.Segment{
		{Content: strings.Repeat("x", 200)},
	}, "doc.pdf")
	assert.Error(t, err)
}

func TestChunkSemanticRequiresEmbedder(t *testing.T) {
	s := NewChunkerService(types.DocumentServiceConfig{
		MaxChunkSize: 100,
		Strategy:     StrategySemantic,
	}, nil)

	_, err := s.Chunk(context.Background(), []types.Segment{
		{Content: strings.Repeat("First sentence here. ", 20)},
	}, "doc.pdf")
	assert.Error(t, err)
}

func TestChunkEmptySegments(t *testing.T) {
	s := paragraphChunker(3000)
	chunks, err := s.Chunk(context.Background(), nil, "doc.pdf")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First one. Second one! Third one?")
	require.Len(t, sentences, 3)
	assert.Equal(t, "First one.", sentences[0])
	assert.Equal(t, "Second one!", sentences[1])
	assert.Equal(t, "Third one?", sentences[2])
}
