package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	OriginalName string         `json:"original_name,omitempty"`
	Pipeline     *PipelineState `json:"pipeline,omitempty"`
}

type SearchResponse struct {
	Status      string         `json:"status"`
	Results     []SearchResult `json:"results"`
	ResultCount int            `json:"result_count"`
}

type AskResponse struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources,omitempty"`
}

// ProcessingDocumentStatus is streamed to the client while an uploaded
// document walks through the pipeline.
type ProcessingDocumentStatus struct {
	Status   string        `json:"status"`
	Stage    PipelineStage `json:"stage,omitempty"`
	Message  string        `json:"message,omitempty"`
	Progress float64       `json:"progress,omitempty"`
}
