package reranker

import (
	"context"
	"fmt"
	"math"

	"github.com/lodestone-ai/lodestone/pkg/embedder"
)

// EmbeddingScorer computes relevance as the cosine similarity between the
// query embedding and the passage embedding, mapped into [0, 1].
type EmbeddingScorer struct {
	client embedder.Client
}

// NewEmbeddingScorer creates a scorer backed by the given embedding client.
func NewEmbeddingScorer(client embedder.Client) *EmbeddingScorer {
	return &EmbeddingScorer{client: client}
}

func (s *EmbeddingScorer) Score(ctx context.Context, query, passage string) (float64, error) {
	vectors, err := s.client.Embed(ctx, []string{query, passage})
	if err != nil {
		return 0, fmt.Errorf("embed pair: %w", err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("expected 2 embeddings, got %d", len(vectors))
	}

	sim, err := cosineSimilarity(vectors[0], vectors[1])
	if err != nil {
		return 0, err
	}
	// Cosine similarity is in [-1, 1]; rescale to [0, 1].
	return (sim + 1) / 2, nil
}

func (s *EmbeddingScorer) Close() error {
	return s.client.Close()
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-magnitude vector")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
