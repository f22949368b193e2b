/*
Copyright © 2025 ragforge
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ragforge/pdfrag/config"
	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/service"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdfrag",
	Short: "PDF ingestion and retrieval backend",
	Long: `pdfrag validates, extracts and indexes PDF documents into a vector
store and serves similarity search and retrieval-augmented chat over the
indexed collections.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(cfgFile)
}

// newEmbedder builds the embedding client the configured provider calls for.
func newEmbedder(ctx context.Context, cfg *config.Config) (database.Embedder, error) {
	if cfg.AIProvider == "gemini" {
		return service.NewGeminiEmbedder(ctx, firstKey(cfg.GeminiAPIKeys), cfg.EmbeddingModel, cfg.EmbeddingTimeout)
	}
	return service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingTimeout), nil
}

func newVectorStore(cfg *config.Config, embedder database.Embedder) (database.VectorStore, error) {
	switch cfg.VectorStore.Backend {
	case "weaviate":
		return database.NewWeaviateStore(cfg.VectorStore.Weaviate, embedder)
	case "", "local":
		return database.NewLocalStore(cfg.VectorStore.Dir, embedder)
	default:
		return nil, fmt.Errorf("unknown vector store backend: %s", cfg.VectorStore.Backend)
	}
}

// newPipeline wires the full ingestion chain against the given store. The
// embedder is shared between the semantic chunking strategy and the store.
func newPipeline(cfg *config.Config, store database.VectorStore, embedder database.Embedder) *service.PipelineService {
	chunker := service.NewChunkerService(cfg.Chunking.ToDocumentServiceConfig(), embedder)
	return service.NewPipelineService(
		service.NewValidatorService(),
		service.NewPDFService(),
		service.NewMarkdownService(service.NewHeuristicLineClassifier()),
		service.NewSplitterService(),
		chunker,
		store,
	)
}

func firstKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
