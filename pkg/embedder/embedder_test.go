package embedder_test

import (
	"context"
	"testing"

	"github.com/lodestone-ai/lodestone/pkg/embedder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIEmbedder(t *testing.T) {
	tests := []struct {
		name     string
		config   embedder.Config
		wantDims int
	}{
		{
			name:     "default model",
			config:   embedder.Config{},
			wantDims: 1536,
		},
		{
			name:     "large model dimensions",
			config:   embedder.Config{Model: "text-embedding-3-large"},
			wantDims: 3072,
		},
		{
			name:     "explicit dimensions override",
			config:   embedder.Config{Model: "custom-model", Dimensions: 384},
			wantDims: 384,
		},
		{
			name:     "unknown model falls back to default dimensions",
			config:   embedder.Config{Model: "custom-model"},
			wantDims: 1536,
		},
		{
			name:     "custom base URL",
			config:   embedder.Config{BaseURL: "http://localhost:8000/v1"},
			wantDims: 1536,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := embedder.NewOpenAIEmbedder("test-key", tt.config)
			require.NotNil(t, client)
			assert.Equal(t, tt.wantDims, client.Dimensions())
		})
	}
}

func TestEmbedderInterface(t *testing.T) {
	var _ embedder.Client = (*embedder.OpenAIEmbedder)(nil)
	var _ embedder.Client = (*embedder.EmbedEverythingClient)(nil)
}

func TestOpenAIEmbedEmptyInput(t *testing.T) {
	client := embedder.NewOpenAIEmbedder("test-key", embedder.Config{})
	embeddings, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestOpenAIEmbedderIntegration(t *testing.T) {
	t.Skip("integration test - requires API key")

	ctx := context.Background()
	client := embedder.NewOpenAIEmbedder("test-key", embedder.Config{})

	embedding, err := client.EmbedSingle(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, client.Dimensions(), len(embedding))
}
