package reranker

import (
	"context"
	"hash/fnv"
)

// MockScorer produces deterministic scores from the passage text alone.
// Useful in tests and offline pipelines where no model is available.
type MockScorer struct{}

// NewMockScorer creates a deterministic scorer.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

func (s *MockScorer) Score(_ context.Context, query, passage string) (float64, error) {
	h := fnv.New32a()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(passage))
	return float64(h.Sum32()) / float64(^uint32(0)), nil
}

func (s *MockScorer) Close() error { return nil }
