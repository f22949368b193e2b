/*
Copyright © 2025 ragforge
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/repository"
	"github.com/ragforge/pdfrag/service"
	"github.com/ragforge/pdfrag/types"
	"github.com/spf13/cobra"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [files or directories...]",
	Short: "Run the ingestion pipeline against local PDF files",
	Long: `Validates, extracts, chunks and indexes the given PDF files into the
configured vector store. Directories are expanded to the PDF files they
contain. Each file is reported individually; the command exits non-zero
when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		collectionName, _ := cmd.Flags().GetString("collection")

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if collectionName == "" {
			collectionName = cfg.CollectionName
		}

		ctx := context.Background()
		embedder, err := newEmbedder(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create embedder: %v", err)
		}
		store, err := newVectorStore(cfg, embedder)
		if err != nil {
			log.Fatalf("Failed to create vector store: %v", err)
		}
		pipeline := newPipeline(cfg, store, embedder)

		var registry repository.IngestRepo
		if cfg.MongoURI != "" {
			mongoClient, err := database.NewMongoClient(cfg.MongoURI)
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			registry = repository.NewIngestRepo(mongoClient.Database("pdfrag"))
		}
		fileService := service.NewFileService(cfg.UploadDir, pipeline, registry)

		files, err := collectPDFs(args)
		if err != nil {
			log.Fatalf("Failed to collect files: %v", err)
		}
		if len(files) == 0 {
			log.Fatal("No PDF files found")
		}

		failed := 0
		for _, filePath := range files {
			state, err := fileService.IngestFile(ctx, filePath, collectionName, func(status types.ProcessingDocumentStatus) {
				fmt.Printf("  [%s] %s\n", status.Stage, status.Message)
			})
			if err != nil {
				failed++
				fmt.Printf("FAIL %s: %v\n", filePath, err)
				continue
			}
			if state.Failed() {
				failed++
				fmt.Printf("FAIL %s: %s at %s\n", filePath, state.ErrorMessage, state.FailingStage)
				continue
			}
			fmt.Printf("OK   %s: %d pages, %d chunks -> %s\n",
				filePath, state.PageCount, state.TotalChunks, state.VectorStoreInfo.SavePath)
		}
		if failed > 0 {
			log.Fatalf("%d of %d files failed", failed, len(files))
		}
	},
}

func collectPDFs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				files = append(files, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("collection", "c", "", "collection to index into (defaults to the configured collection)")
}
