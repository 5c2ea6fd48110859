// Command mcp-server exposes Lodestone retrieval tools to agent frameworks
// through Genkit tool definitions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/firebase/genkit/go/genkit"
	"github.com/spf13/viper"

	lode "github.com/lodestone-ai/lodestone"
	"github.com/lodestone-ai/lodestone/pkg/config"
	"github.com/lodestone-ai/lodestone/pkg/embedder"
	"github.com/lodestone-ai/lodestone/pkg/llm"
	lodeLogger "github.com/lodestone-ai/lodestone/pkg/logger"
	"github.com/lodestone-ai/lodestone/pkg/reranker"
	"github.com/lodestone-ai/lodestone/pkg/store"
	"github.com/lodestone-ai/lodestone/pkg/store/badgerstore"
	"github.com/lodestone-ai/lodestone/pkg/store/memory"
	"github.com/lodestone-ai/lodestone/pkg/store/neo4jstore"
)

// Default configuration values
const (
	DefaultEmbedderModel = "text-embedding-3-small"
	DefaultRerankModel   = "gpt-4o-mini"
	DefaultTopK          = 5
)

// Config holds all configuration for the MCP server
type Config struct {
	// Embedder configuration
	EmbedderProvider string
	EmbedderModel    string
	OpenAIAPIKey     string

	// Reranker configuration
	RerankEnabled  bool
	RerankProvider string
	RerankModel    string

	// Store configuration
	StoreDriver string
	StoreName   string
	StorePath   string
	Neo4jURI    string
	Neo4jUser   string
	Neo4jPass   string

	// Tool configuration
	IndexName    string
	EnableFilter bool
	ConfigFile   string
}

// MCPServer wraps the lodestone client for MCP operations
type MCPServer struct {
	config *Config
	client *lode.Client
	logger *slog.Logger
}

// NewConfig creates a new configuration from environment variables
func NewConfig() *Config {
	return &Config{
		EmbedderProvider: getEnv("EMBEDDER_PROVIDER", "openai"),
		EmbedderModel:    getEnv("EMBEDDER_MODEL_NAME", DefaultEmbedderModel),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		RerankEnabled:    getEnvBool("RERANK_ENABLED", false),
		RerankProvider:   getEnv("RERANK_PROVIDER", "llm"),
		RerankModel:      getEnv("RERANK_MODEL_NAME", DefaultRerankModel),
		StoreDriver:      getEnv("STORE_DRIVER", "badger"),
		StoreName:        getEnv("STORE_NAME", "default"),
		StorePath:        getEnv("STORE_PATH", "./lodestone_db"),
		Neo4jURI:         getEnv("NEO4J_URI", ""),
		Neo4jUser:        getEnv("NEO4J_USER", ""),
		Neo4jPass:        getEnv("NEO4J_PASSWORD", ""),
		IndexName:        getEnv("INDEX_NAME", "default"),
		EnableFilter:     getEnvBool("ENABLE_FILTER", true),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(cfg *Config) (*MCPServer, error) {
	logger := lodeLogger.NewDefaultLogger(slog.LevelInfo)

	// Create embedder client
	var embedderClient embedder.Client
	var err error
	switch cfg.EmbedderProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai embedder")
		}
		embedderClient = embedder.NewOpenAIEmbedder(cfg.OpenAIAPIKey, embedder.Config{
			Model: cfg.EmbedderModel,
		})
	case "embedeverything":
		embedderClient, err = embedder.NewEmbedEverythingClient(embedder.Config{
			Model: cfg.EmbedderModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", cfg.EmbedderProvider)
	}

	// Create reranker client
	var rerankerClient reranker.Client
	if cfg.RerankEnabled {
		clientConfig := reranker.ClientConfig{
			Provider: reranker.Provider(cfg.RerankProvider),
			Config:   reranker.DefaultConfig(reranker.Provider(cfg.RerankProvider)),
		}
		clientConfig.Config.Model = cfg.RerankModel
		switch clientConfig.Provider {
		case reranker.ProviderLLM:
			clientConfig.LLMClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, llm.Config{Model: cfg.RerankModel})
		case reranker.ProviderEmbedding:
			clientConfig.EmbedderClient = embedderClient
		}
		rerankerClient, err = reranker.NewClient(clientConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create reranker: %w", err)
		}
	}

	client, err := lode.NewClient(lode.Options{
		Embedder: embedderClient,
		Reranker: rerankerClient,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lodestone client: %w", err)
	}

	// Create and register the vector store
	vectorStore, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	client.Registry().Register(cfg.StoreName, vectorStore)

	return &MCPServer{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

func newStore(cfg *Config) (store.VectorStore, error) {
	switch cfg.StoreDriver {
	case "memory":
		return memory.New(), nil
	case "badger":
		return badgerstore.Open(cfg.StorePath)
	case "neo4j":
		return neo4jstore.New(neo4jstore.Config{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUser,
			Password: cfg.Neo4jPass,
		})
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

// Initialize builds the retrieval tools served over MCP.
func (s *MCPServer) Initialize(ctx context.Context) error {
	s.logger.Info("Initializing Lodestone MCP server...")

	specs, err := s.toolSpecs()
	if err != nil {
		return err
	}
	for _, spec := range specs {
		tool, err := s.client.BuildTool(spec)
		if err != nil {
			return fmt.Errorf("failed to build tool: %w", err)
		}
		s.logger.Info("tool built", "name", tool.Name(), "store", spec.StoreName, "index", spec.IndexName)
	}

	s.logger.Info("MCP server configuration",
		"embedder_provider", s.config.EmbedderProvider,
		"embedder_model", s.config.EmbedderModel,
		"rerank_enabled", s.config.RerankEnabled,
		"store_driver", s.config.StoreDriver,
	)
	return nil
}

// toolSpecs reads tool definitions from the config file when given, and
// otherwise derives a single tool from the environment.
func (s *MCPServer) toolSpecs() ([]lode.ToolSpec, error) {
	if s.config.ConfigFile == "" {
		return []lode.ToolSpec{{
			StoreName:    s.config.StoreName,
			IndexName:    s.config.IndexName,
			EnableFilter: s.config.EnableFilter,
		}}, nil
	}

	viper.SetConfigFile(s.config.ConfigFile)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	specs := make([]lode.ToolSpec, 0, len(cfg.Tools))
	for _, toolCfg := range cfg.Tools {
		specs = append(specs, lode.ToolSpec{
			ID:            toolCfg.ID,
			Description:   toolCfg.Description,
			StoreName:     toolCfg.StoreName,
			IndexName:     toolCfg.IndexName,
			EnableFilter:  toolCfg.EnableFilter,
			DisableRerank: toolCfg.DisableRerank,
			RerankTopK:    toolCfg.RerankTopK,
		})
	}
	return specs, nil
}

// Run starts the MCP server
func (s *MCPServer) Run(ctx context.Context) error {
	s.logger.Info("Starting Genkit MCP server")

	// Initialize Genkit
	g := genkit.Init(ctx)

	// Register all tools
	s.RegisterTools(g)

	s.logger.Info("MCP server is ready to accept requests")

	// Keep the server running
	<-ctx.Done()
	return ctx.Err()
}

func main() {
	// Parse command line flags
	var (
		configFile   = flag.String("config", "", "Config file with stores and tools")
		storeDriver  = flag.String("store-driver", "", "Vector store driver (memory, badger, neo4j)")
		storeName    = flag.String("store-name", "", "Store name tools resolve at call time")
		indexName    = flag.String("index", "", "Index name to search")
		enableFilter = flag.Bool("enable-filter", true, "Accept a filter field on tool input")
	)
	flag.Parse()

	cfg := NewConfig()
	if *configFile != "" {
		cfg.ConfigFile = *configFile
	}
	if *storeDriver != "" {
		cfg.StoreDriver = *storeDriver
	}
	if *storeName != "" {
		cfg.StoreName = *storeName
	}
	if *indexName != "" {
		cfg.IndexName = *indexName
	}
	cfg.EnableFilter = *enableFilter

	server, err := NewMCPServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.client.Close()

	ctx := context.Background()
	if err := server.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize MCP server: %v", err)
	}
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("MCP server error: %v", err)
	}
}
