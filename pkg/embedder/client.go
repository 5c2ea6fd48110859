package embedder

import "context"

// Client generates embedding vectors for text.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per text,
	// in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector width produced by this client.
	Dimensions() int

	// Close cleans up any resources held by the client.
	Close() error
}

// Config holds common configuration for embedding clients.
type Config struct {
	// Model is the provider-specific model identifier.
	Model string `json:"model"`
	// BaseURL overrides the provider endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty"`
	// Dimensions overrides the reported vector width when the provider
	// does not expose it.
	Dimensions int `json:"dimensions,omitempty"`
	// BatchSize caps the number of texts sent per provider request.
	BatchSize int `json:"batch_size,omitempty"`
}
