package service

import (
	"context"
	"time"

	"github.com/ragforge/pdfrag/types"
	"github.com/sashabaranov/go-openai"
)

// Embedder maps texts to dense vectors, one vector per input text, in input
// order, with fixed dimensionality per model. Provider failures surface as
// types.ServiceError; retry policy belongs to the caller.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// OpenAIEmbedder calls the OpenAI embeddings API (or any compatible server
// behind baseURL, e.g. a local model runner).
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIEmbedder(baseURL, apiKey, model string, timeout time.Duration) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
	}
}

func (e *OpenAIEmbedder) ModelName() string { return e.model }

func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, &types.ServiceError{Op: "create embeddings", Err: err}
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			continue
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
