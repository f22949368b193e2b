package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/ragforge/pdfrag/types"
	"google.golang.org/api/option"
)

var errMismatchedEmbeddings = errors.New("embedding count does not match input count")

// GeminiEmbedder is the Gemini-backed alternative to OpenAIEmbedder.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiEmbedder(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiEmbedder{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

func (e *GeminiEmbedder) ModelName() string { return e.model }

func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	em := e.client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, &types.ServiceError{Op: "batch embed contents", Err: err}
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &types.ServiceError{Op: "batch embed contents", Err: errMismatchedEmbeddings}
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (e *GeminiEmbedder) Close() error { return e.client.Close() }
