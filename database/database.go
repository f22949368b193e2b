package database

import (
	"context"
	"math"

	"github.com/ragforge/pdfrag/types"
)

// Embedder is the slice of the embedding service a vector store needs.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// VectorStore persists embedded chunks under named collections and answers
// nearest-neighbour queries against them.
//
// Store computes embeddings internally and overwrites the named collection
// wholesale; callers must serialize stores per collection name. Search
// returns at most k results ordered by descending similarity, ties broken
// by insertion order, and is safe to run concurrently against a stable
// collection.
type VectorStore interface {
	Store(ctx context.Context, collectionName string, chunks []types.DocumentChunk) (*types.StoreResult, error)
	Search(ctx context.Context, collectionName string, query string, k int) ([]types.SearchResult, error)
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
