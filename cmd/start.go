/*
Copyright © 2025 ragforge
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/handler"
	"github.com/ragforge/pdfrag/middleware"
	"github.com/ragforge/pdfrag/repository"
	"github.com/ragforge/pdfrag/service"
	"github.com/spf13/cobra"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ingestion and retrieval server",
	Long:  `Starts the HTTP server: document upload and ingestion, similarity search, validation, RAG question answering and chat.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
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

		// The ingest registry is optional; without MongoDB runs are simply
		// not recorded.
		var registry repository.IngestRepo
		if cfg.MongoURI != "" {
			mongoClient, err := database.NewMongoClient(cfg.MongoURI)
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			if err := mongoClient.Ping(ctx, nil); err != nil {
				log.Fatalf("Failed to ping MongoDB: %v", err)
			}
			registry = repository.NewIngestRepo(mongoClient.Database("pdfrag"))
		}

		fileService := service.NewFileService(cfg.UploadDir, pipeline, registry)

		var aiService service.AIService
		if cfg.AIProvider == "gemini" {
			geminiService, err := service.NewGeminiService(cfg.GeminiAPIKeys, cfg.Model)
			if err != nil {
				log.Fatalf("Failed to create Gemini service: %v", err)
			}
			geminiService.RegisterRAGFunction(store, cfg.CollectionName, cfg.TopK)
			aiService = geminiService
		} else {
			openaiService := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
			openaiService.RegisterRAGFunctionCall(store, cfg.CollectionName, cfg.TopK)
			if cfg.GoogleSearch.APIKey != "" {
				webSearch := service.NewWebSearchService(cfg.GoogleSearch.APIKey, cfg.GoogleSearch.EngineID)
				openaiService.RegisterWebSearchFunctionCall(webSearch)
			}
			aiService = openaiService
		}
		wsService := service.NewWebSocketService(aiService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(fileService)
		searchHandler := handler.NewSearchHandler(store, cfg.CollectionName, cfg.TopK)
		validateHandler := handler.NewValidateHandler(service.NewValidatorService())
		askHandler := handler.NewAskHandler(store, aiService, cfg.CollectionName, cfg.TopK)
		chatHandler := handler.NewChatHandler(aiService, wsService)
		documentHandler := handler.NewDocumentHandler(cfg.UploadDir)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)
		router.GET("/health", gin.WrapH(wsService.Health()))

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/search", searchHandler.HandleSearch)
			apiV1.POST("/validate", validateHandler.HandleValidate)
			apiV1.POST("/ask", askHandler.HandleAsk)
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.GET("/chat/ws", chatHandler.HandleChatWS)
			apiV1.GET("/pdf", documentHandler.ServeDocument)
		}

		// Admin routes - require admin authentication
		adminRoutes := router.Group("/admin/api/v1")
		adminRoutes.Use(middleware.AdminAuthMiddleware())
		{
			adminRoutes.POST("/upload", uploadHandler.UploadDocumentHandler)
			if registry != nil {
				ingestHandler := handler.NewIngestHandler(registry)
				adminRoutes.GET("/ingests", ingestHandler.HandleListIngests)
			}
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
