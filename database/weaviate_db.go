package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/ragforge/pdfrag/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

// WeaviateStoreConfig carries the connection settings for a remote Weaviate
// instance.
type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

// WeaviateStore is the remote alternative to LocalStore: one Weaviate class
// per collection, vectors supplied by the configured embedder (class
// vectorizer is "none"). Store recreates the class wholesale, matching the
// overwrite semantics of the local backend.
type WeaviateStore struct {
	client   *weaviate.Client
	embedder Embedder
}

func NewWeaviateStore(config WeaviateStoreConfig, embedder Embedder) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}
	return &WeaviateStore{
		client:   client,
		embedder: embedder,
	}, nil
}

func (s *WeaviateStore) Store(ctx context.Context, collectionName string, chunks []types.DocumentChunk) (*types.StoreResult, error) {
	if len(chunks) == 0 {
		return nil, types.ErrEmptyInput
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	className := classNameFor(collectionName)
	if err := s.recreateClass(ctx, className); err != nil {
		return nil, err
	}

	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			headersJSON, _ := json.Marshal(chunks[j].Metadata.Headers)
			properties := map[string]interface{}{
				"content": chunks[j].Content,
				"source":  chunks[j].Metadata.Source,
				"page":    chunks[j].Metadata.Page,
				"headers": string(headersJSON),
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      className,
				Properties: properties,
				Vector:     vectors[j],
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return nil, &types.StorageError{Op: fmt.Sprintf("insert batch %d-%d", i, end), Err: err}
		}
		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}

	return &types.StoreResult{
		Status:         types.StatusSuccess,
		CollectionName: collectionName,
		DocumentCount:  total,
		SavePath:       className,
		EmbeddingModel: s.embedder.ModelName(),
	}, nil
}

func (s *WeaviateStore) Search(ctx context.Context, collectionName string, query string, k int) ([]types.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if k <= 0 {
		k = 5
	}

	className := classNameFor(collectionName)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return nil, &types.StorageError{Op: "check collection", Err: err}
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrCollectionNotFound, collectionName)
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "page"},
		{Name: "headers"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vectors[0])

	result, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, &types.StorageError{Op: "search collection", Err: err}
	}
	if result.Errors != nil {
		return nil, &types.StorageError{Op: "search collection", Err: fmt.Errorf("%v", result.Errors[0].Message)}
	}

	var results []types.SearchResult
	get, _ := result.Data["Get"].(map[string]interface{})
	if data, ok := get[className].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			res := types.SearchResult{
				Metadata: types.ChunkMetadata{},
			}
			if content, ok := obj["content"].(string); ok {
				res.Content = content
			}
			if source, ok := obj["source"].(string); ok {
				res.Metadata.Source = source
			}
			if page, ok := obj["page"].(float64); ok {
				res.Metadata.Page = int(page)
			}
			if headers, ok := obj["headers"].(string); ok && headers != "" && headers != "null" {
				var parsed map[string]string
				if err := json.Unmarshal([]byte(headers), &parsed); err == nil {
					res.Metadata.Headers = parsed
				}
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if distance, ok := additional["distance"].(float64); ok {
					res.SimilarityScore = float32(1 - distance)
				}
			}
			results = append(results, res)
		}
	}
	return results, nil
}

func (s *WeaviateStore) recreateClass(ctx context.Context, className string) error {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return &types.StorageError{Op: "check collection", Err: err}
	}
	if exists {
		if err := s.client.Schema().ClassDeleter().WithClassName(className).Do(ctx); err != nil {
			return &types.StorageError{Op: "delete collection", Err: err}
		}
	}

	classObj := &models.Class{
		Class: className,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "headers", DataType: []string{"text"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
	if err := s.client.Schema().ClassCreator().WithClass(classObj).Do(ctx); err != nil {
		return &types.StorageError{Op: "create collection", Err: err}
	}
	return nil
}

// classNameFor maps a collection name onto a valid Weaviate class name.
func classNameFor(collectionName string) string {
	var sb strings.Builder
	for _, r := range collectionName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	name := sb.String()
	if name == "" {
		name = "Collection"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
