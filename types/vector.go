package types

// StoreResult reports the outcome of persisting a chunk set to a collection.
type StoreResult struct {
	Status         string `json:"status"`
	CollectionName string `json:"collection_name"`
	DocumentCount  int    `json:"document_count"`
	SavePath       string `json:"save_path,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// SearchResult is one retrieved chunk with its similarity to the query.
// Results are ordered by descending similarity.
type SearchResult struct {
	Content         string        `json:"content"`
	Metadata        ChunkMetadata `json:"metadata"`
	SimilarityScore float32       `json:"similarity_score"`
}
