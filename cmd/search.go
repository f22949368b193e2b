/*
Copyright © 2025 ragforge
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an indexed collection",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		collectionName, _ := cmd.Flags().GetString("collection")
		k, _ := cmd.Flags().GetInt("k")
		query := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if collectionName == "" {
			collectionName = cfg.CollectionName
		}
		if k <= 0 {
			k = cfg.TopK
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

		results, err := store.Search(ctx, collectionName, query, k)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}

		for i, result := range results {
			fmt.Printf("%d. score=%.4f source=%s page=%d\n", i+1, result.SimilarityScore, result.Metadata.Source, result.Metadata.Page)
			for key, value := range result.Metadata.Headers {
				fmt.Printf("   %s: %s\n", key, value)
			}
			fmt.Printf("   %s\n\n", truncate(result.Content, 300))
		}
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("collection", "c", "", "collection to search (defaults to the configured collection)")
	searchCmd.Flags().IntP("k", "k", 0, "number of results")
}
