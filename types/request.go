package types

type UploadRequest struct {
	Title          string   `json:"title"`
	Source         string   `json:"source"`
	Tags           []string `json:"tags,omitempty"`
	CollectionName string   `json:"collection_name,omitempty"`
}

type SearchRequest struct {
	CollectionName string `json:"collection_name"`
	Query          string `json:"query"`
	K              int    `json:"k,omitempty"`
}

type ValidateRequest struct {
	FilePath string `json:"file_path"`
}

type AskRequest struct {
	Question       string `json:"question"`
	CollectionName string `json:"collection_name,omitempty"`
	K              int    `json:"k,omitempty"`
}
