package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ragforge/pdfrag/types"
)

const (
	recordsFile = "records.json"
	metaFile    = "meta.json"
)

// indexRecord is one persisted (vector, content, metadata) tuple.
type indexRecord struct {
	Vector   []float32           `json:"vector"`
	Content  string              `json:"content"`
	Metadata types.ChunkMetadata `json:"metadata"`
}

type collectionMeta struct {
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model"`
	Dimension      int    `json:"dimension"`
	DocumentCount  int    `json:"document_count"`
	CreatedAt      int64  `json:"created_at"`
}

// LocalStore is a file-backed vector store: one directory per collection
// under root, holding the records and a small meta file, searched with
// brute-force cosine similarity. Collections are loadable by name alone.
type LocalStore struct {
	root     string
	embedder Embedder

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func NewLocalStore(root string, embedder Embedder) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, &types.StorageError{Op: "create vector store root", Err: err}
	}
	return &LocalStore{
		root:     root,
		embedder: embedder,
		locks:    make(map[string]*sync.RWMutex),
	}, nil
}

// Store embeds the chunks and overwrites the named collection wholesale.
func (s *LocalStore) Store(ctx context.Context, collectionName string, chunks []types.DocumentChunk) (*types.StoreResult, error) {
	if len(chunks) == 0 {
		return nil, types.ErrEmptyInput
	}
	if err := validateCollectionName(collectionName); err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	records := make([]indexRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = indexRecord{
			Vector:   vectors[i],
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
		}
	}

	dimension := 0
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}
	meta := collectionMeta{
		CollectionName: collectionName,
		EmbeddingModel: s.embedder.ModelName(),
		Dimension:      dimension,
		DocumentCount:  len(records),
		CreatedAt:      time.Now().Unix(),
	}

	lock := s.collectionLock(collectionName)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Join(s.root, collectionName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &types.StorageError{Op: "create collection directory", Err: err}
	}
	if err := writeJSONFile(filepath.Join(dir, recordsFile), records); err != nil {
		return nil, err
	}
	if err := writeJSONFile(filepath.Join(dir, metaFile), meta); err != nil {
		return nil, err
	}

	return &types.StoreResult{
		Status:         types.StatusSuccess,
		CollectionName: collectionName,
		DocumentCount:  len(records),
		SavePath:       dir,
		EmbeddingModel: s.embedder.ModelName(),
	}, nil
}

// Search embeds the query and ranks the collection by cosine similarity,
// descending. Repeated searches against an unchanged collection return
// identical orderings: the sort is stable over insertion order.
func (s *LocalStore) Search(ctx context.Context, collectionName string, query string, k int) ([]types.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if err := validateCollectionName(collectionName); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 5
	}

	lock := s.collectionLock(collectionName)
	lock.RLock()
	records, err := s.loadRecords(collectionName)
	lock.RUnlock()
	if err != nil {
		return nil, err
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	queryVector := vectors[0]

	results := make([]types.SearchResult, len(records))
	for i, record := range records {
		results[i] = types.SearchResult{
			Content:         record.Content,
			Metadata:        record.Metadata,
			SimilarityScore: cosineSimilarity(queryVector, record.Vector),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (s *LocalStore) loadRecords(collectionName string) ([]indexRecord, error) {
	path := filepath.Join(s.root, collectionName, recordsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrCollectionNotFound, collectionName)
		}
		return nil, &types.StorageError{Op: "read collection", Err: err}
	}
	var records []indexRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &types.StorageError{Op: "decode collection", Err: err}
	}
	return records, nil
}

func (s *LocalStore) collectionLock(collectionName string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[collectionName]
	if !ok {
		lock = &sync.RWMutex{}
		s.locks[collectionName] = lock
	}
	return lock
}

// writeJSONFile writes via a temp file and rename so a crashed store never
// leaves a half-written collection behind.
func writeJSONFile(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &types.StorageError{Op: "encode collection", Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return &types.StorageError{Op: "write collection", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &types.StorageError{Op: "write collection", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &types.StorageError{Op: "write collection", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &types.StorageError{Op: "write collection", Err: err}
	}
	return nil
}

// validateCollectionName keeps collection names usable as directory names.
func validateCollectionName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid collection name: %q", name)
	}
	return nil
}
