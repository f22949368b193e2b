package types

type PipelineStage string

const (
	StageValidating  PipelineStage = "VALIDATING"
	StageExtracting  PipelineStage = "EXTRACTING"
	StageStructuring PipelineStage = "STRUCTURING"
	StageSplitting   PipelineStage = "SPLITTING"
	StageChunking    PipelineStage = "CHUNKING"
	StageEmbedding   PipelineStage = "EMBEDDING"
	StageStoring     PipelineStage = "STORING"
	StageDone        PipelineStage = "DONE"
	StageFailed      PipelineStage = "FAILED"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// PipelineState accumulates the outputs of each pipeline stage for one
// document run. Every stage writes only its own fields; DONE and FAILED are
// terminal.
type PipelineState struct {
	FilePath        string            `json:"file_path"`
	FileName        string            `json:"file_name"`
	CollectionName  string            `json:"collection_name"`
	Stage           PipelineStage     `json:"stage"`
	Validation      *ValidationReport `json:"validation,omitempty"`
	PageCount       int               `json:"page_count,omitempty"`
	SegmentCount    int               `json:"segment_count,omitempty"`
	Chunks          []DocumentChunk   `json:"-"`
	TotalChunks     int               `json:"total_chunks,omitempty"`
	ChunkingStatus  string            `json:"chunking_status,omitempty"`
	EmbeddingStatus string            `json:"embedding_status,omitempty"`
	VectorStoreInfo *StoreResult      `json:"vectorstore_info,omitempty"`
	FailingStage    PipelineStage     `json:"failing_stage,omitempty"`
	ErrorMessage    string            `json:"error_message,omitempty"`
}

// Fail records the failing stage and transitions the state machine into the
// absorbing FAILED state.
func (s *PipelineState) Fail(stage PipelineStage, err error) {
	s.Stage = StageFailed
	s.FailingStage = stage
	if err != nil {
		s.ErrorMessage = err.Error()
	}
}

func (s *PipelineState) Done() bool   { return s.Stage == StageDone }
func (s *PipelineState) Failed() bool { return s.Stage == StageFailed }
