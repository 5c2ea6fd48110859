package reranker

import (
	"fmt"

	"github.com/lodestone-ai/lodestone/pkg/embedder"
	"github.com/lodestone-ai/lodestone/pkg/llm"
)

// Provider represents the type of reranking provider
type Provider string

const (
	// ProviderLLM scores passages with a chat model relevance judgment
	ProviderLLM Provider = "llm"

	// ProviderEmbedding scores passages by embedding cosine similarity
	ProviderEmbedding Provider = "embedding"

	// ProviderMock uses a deterministic scorer for testing
	ProviderMock Provider = "mock"
)

// ClientConfig holds configuration for creating reranker clients
type ClientConfig struct {
	Provider       Provider        `json:"provider"`
	Config         Config          `json:"config"`
	LLMClient      llm.Client      `json:"-"` // Required for llm provider, passed at runtime
	EmbedderClient embedder.Client `json:"-"` // Required for embedding provider
}

// NewClient creates a new reranker client based on the provider type
func NewClient(clientConfig ClientConfig) (Client, error) {
	switch clientConfig.Provider {
	case ProviderLLM:
		if clientConfig.LLMClient == nil {
			return nil, fmt.Errorf("LLM client is required for llm provider")
		}
		return New(NewLLMScorer(clientConfig.LLMClient), clientConfig.Config), nil

	case ProviderEmbedding:
		if clientConfig.EmbedderClient == nil {
			return nil, fmt.Errorf("embedder client is required for embedding provider")
		}
		return New(NewEmbeddingScorer(clientConfig.EmbedderClient), clientConfig.Config), nil

	case ProviderMock:
		return New(NewMockScorer(), clientConfig.Config), nil

	default:
		return nil, fmt.Errorf("unsupported reranker provider: %s", clientConfig.Provider)
	}
}

// DefaultConfig returns a default configuration for the given provider
func DefaultConfig(provider Provider) Config {
	switch provider {
	case ProviderLLM:
		return Config{
			Model:          "gpt-4o-mini",
			MaxConcurrency: 5,
		}
	case ProviderEmbedding:
		return Config{
			MaxConcurrency: 10, // Embeddings are typically faster than chat calls
		}
	case ProviderMock:
		return Config{
			MaxConcurrency: 100,
		}
	default:
		return Config{}
	}
}
