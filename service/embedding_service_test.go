package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedderBatchOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		// Return items out of order; the embedder must slot them by index.
		items := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			items = append(items, item{
				Object:    "embedding",
				Index:     i,
				Embedding: []float32{float32(i), 1},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   items,
			"model":  req.Model,
		})
	}))
	defer server.Close()

	e := NewOpenAIEmbedder(server.URL, "test-key", "test-model", 5*time.Second)
	vectors, err := e.EmbedTexts(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for i, v := range vectors {
		assert.Equal(t, []float32{float32(i), 1}, v)
	}
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	e := NewOpenAIEmbedder("http://localhost:0", "key", "m", time.Second)
	vectors, err := e.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestOpenAIEmbedderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := NewOpenAIEmbedder(server.URL, "test-key", "test-model", 5*time.Second)
	_, err := e.EmbedTexts(context.Background(), []string{"a"})
	require.Error(t, err)
}

func TestOpenAIEmbedderModelName(t *testing.T) {
	e := NewOpenAIEmbedder("", "key", "text-embedding-3-small", 0)
	assert.Equal(t, "text-embedding-3-small", e.ModelName())
}
