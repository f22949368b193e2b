package types

// IngestRecord is the registry entry persisted after each pipeline run.
type IngestRecord struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	FileName       string        `json:"file_name" bson:"file_name"`
	Source         string        `json:"source" bson:"source"`
	CollectionName string        `json:"collection_name" bson:"collection_name"`
	TotalChunks    int           `json:"total_chunks" bson:"total_chunks"`
	Status         string        `json:"status" bson:"status"`
	FailingStage   PipelineStage `json:"failing_stage,omitempty" bson:"failing_stage,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt      int64         `json:"created_at" bson:"created_at"`
}

// DocumentServiceConfig contains configuration options for the chunking
// pipeline stages.
type DocumentServiceConfig struct {
	MaxChunkSize int    // Maximum size for text chunks
	ChunkOverlap int    // Overlap between chunks (window strategy only)
	Strategy     string // paragraph | window | semantic
}
