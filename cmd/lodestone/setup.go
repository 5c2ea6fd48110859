package lodestone

import (
	"fmt"
	"log/slog"
	"os"

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
	"github.com/lodestone-ai/lodestone/pkg/telemetry"
)

// buildLogger creates the process logger from config, chaining the Parquet
// telemetry handler behind it when enabled.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		handler = lodeLogger.NewHandler(os.Stderr, lodeLogger.Options{Level: level})
	}

	if cfg.Telemetry.Enabled {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, fmt.Errorf("setup telemetry: %w", err)
		}
		handler = parquetHandler
	}

	return slog.New(handler), nil
}

// buildEmbedder creates the embedding client from config.
func buildEmbedder(cfg config.EmbeddingConfig) (embedder.Client, error) {
	embedderConfig := embedder.Config{
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		Dimensions: cfg.Dimensions,
	}

	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding API key is required (set OPENAI_API_KEY)")
		}
		return embedder.NewOpenAIEmbedder(cfg.APIKey, embedderConfig), nil
	case "embedeverything":
		return embedder.NewEmbedEverythingClient(embedderConfig)
	case "mock":
		return embedder.NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// buildReranker creates the reranker from config, or returns nil when
// reranking is disabled.
func buildReranker(cfg *config.Config, embedderClient embedder.Client) (reranker.Client, error) {
	if !cfg.Reranker.Enabled {
		return nil, nil
	}

	rerankerConfig := reranker.Config{
		Model:          cfg.Reranker.Model,
		MaxConcurrency: cfg.Reranker.MaxConcurrency,
		TextField:      cfg.Reranker.TextField,
	}

	clientConfig := reranker.ClientConfig{
		Provider: reranker.Provider(cfg.Reranker.Provider),
		Config:   rerankerConfig,
	}
	switch clientConfig.Provider {
	case reranker.ProviderLLM:
		if cfg.Reranker.APIKey == "" {
			return nil, fmt.Errorf("reranker API key is required (set OPENAI_API_KEY)")
		}
		var llmClient llm.Client = llm.NewOpenAIClient(cfg.Reranker.APIKey, llm.Config{
			Model:   cfg.Reranker.Model,
			BaseURL: cfg.Reranker.BaseURL,
		})
		if cfg.CircuitBreaker.Enabled {
			llmClient = llm.NewCircuitBreakerClient(llmClient, llm.BreakerConfig{
				MaxRequests:      cfg.CircuitBreaker.MaxRequests,
				Interval:         cfg.CircuitBreaker.Interval,
				Timeout:          cfg.CircuitBreaker.Timeout,
				ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
			}, "reranker")
		}
		clientConfig.LLMClient = llmClient
	case reranker.ProviderEmbedding:
		clientConfig.EmbedderClient = embedderClient
	}

	return reranker.NewClient(clientConfig)
}

// buildClient assembles the lodestone client: embedder, reranker, stores,
// and the configured tools.
func buildClient(cfg *config.Config, logger *slog.Logger) (*lode.Client, error) {
	embedderClient, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	rerankerClient, err := buildReranker(cfg, embedderClient)
	if err != nil {
		return nil, err
	}

	opts := lode.Options{
		Embedder: embedderClient,
		Reranker: rerankerClient,
		Logger:   logger,
	}
	if cfg.Reranker.Enabled {
		opts.RerankWeights = &reranker.Weights{
			Relevance: cfg.Reranker.WeightRelevance,
			Vector:    cfg.Reranker.WeightVector,
			Position:  cfg.Reranker.WeightPosition,
		}
	}

	client, err := lode.NewClient(opts)
	if err != nil {
		return nil, err
	}

	for _, storeCfg := range cfg.Stores {
		vectorStore, err := buildStore(storeCfg)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("store %q: %w", storeCfg.Name, err)
		}
		client.Registry().Register(storeCfg.Name, vectorStore)
		logger.Info("store registered", "name", storeCfg.Name, "driver", storeCfg.Driver)
	}

	for _, toolCfg := range cfg.Tools {
		tool, err := client.BuildTool(lode.ToolSpec{
			ID:            toolCfg.ID,
			Description:   toolCfg.Description,
			StoreName:     toolCfg.StoreName,
			IndexName:     toolCfg.IndexName,
			EnableFilter:  toolCfg.EnableFilter,
			DisableRerank: toolCfg.DisableRerank,
			RerankTopK:    toolCfg.RerankTopK,
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("tool over %s/%s: %w", toolCfg.StoreName, toolCfg.IndexName, err)
		}
		logger.Info("tool built", "name", tool.Name(), "store", toolCfg.StoreName, "index", toolCfg.IndexName)
	}

	return client, nil
}

func buildStore(cfg config.StoreConfig) (store.VectorStore, error) {
	switch cfg.Driver {
	case "memory", "":
		return memory.New(), nil
	case "badger":
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger store requires a path")
		}
		return badgerstore.Open(cfg.Path)
	case "neo4j":
		return neo4jstore.New(neo4jstore.Config{
			URI:      cfg.URI,
			Username: cfg.Username,
			Password: cfg.Password,
			Database: cfg.Database,
		})
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
