package config

import (
	"fmt"
	"time"

	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/types"
	"github.com/spf13/viper"
)

type Config struct {
	Port             string             `mapstructure:"port"`
	UploadDir        string             `mapstructure:"upload_dir"`
	AIProvider       string             `mapstructure:"ai_provider"` // openai | gemini
	AIEndpoint       string             `mapstructure:"ai_endpoint"`
	Model            string             `mapstructure:"model"`
	OpenAIAPIKey     string             `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys    []string           `mapstructure:"gemini_api_keys"`
	EmbeddingModel   string             `mapstructure:"embedding_model"`
	EmbeddingTimeout time.Duration      `mapstructure:"embedding_timeout"`
	MongoURI         string             `mapstructure:"MONGODB_URI"`
	TopK             int                `mapstructure:"top_k"`
	CollectionName   string             `mapstructure:"collection_name"`
	Chunking         ChunkingConfig     `mapstructure:"chunking"`
	VectorStore      VectorStoreConfig  `mapstructure:"vector_store"`
	GoogleSearch     GoogleSearchConfig `mapstructure:"google_search"`
}

type ChunkingConfig struct {
	MaxChunkSize int    `mapstructure:"max_chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	Strategy     string `mapstructure:"strategy"`
}

func (c ChunkingConfig) ToDocumentServiceConfig() types.DocumentServiceConfig {
	return types.DocumentServiceConfig{
		MaxChunkSize: c.MaxChunkSize,
		ChunkOverlap: c.ChunkOverlap,
		Strategy:     c.Strategy,
	}
}

type VectorStoreConfig struct {
	Backend  string                       `mapstructure:"backend"` // local | weaviate
	Dir      string                       `mapstructure:"dir"`
	Weaviate database.WeaviateStoreConfig `mapstructure:"weaviate"`
}

type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"GOOGLE_SEARCH_API_KEY"`
	EngineID string `mapstructure:"engine_id"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("vector_store.weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")
	v.BindEnv("google_search.GOOGLE_SEARCH_API_KEY", "GOOGLE_SEARCH_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("ai_provider", "openai")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("embedding_timeout", "30s")
	v.SetDefault("top_k", 5)
	v.SetDefault("collection_name", "pdf_chunks")
	v.SetDefault("chunking.max_chunk_size", 3000)
	v.SetDefault("chunking.chunk_overlap", 200)
	v.SetDefault("chunking.strategy", "paragraph")
	v.SetDefault("vector_store.backend", "local")
	v.SetDefault("vector_store.dir", "vectorstore")
}
