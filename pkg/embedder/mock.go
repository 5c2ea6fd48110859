package embedder

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
)

// MockEmbedder produces deterministic embeddings without calling a model.
// A text always maps to the same unit vector, so similarity comparisons
// are stable across runs. Vectors can pin exact embeddings per text.
type MockEmbedder struct {
	dimensions int
	// Vectors overrides the derived embedding for specific texts.
	Vectors map[string][]float32
	// Err, when set, is returned by every call.
	Err error
}

// NewMockEmbedder creates a deterministic embedder of the given width.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{dimensions: dimensions}
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.EmbedSingle(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (m *MockEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if pinned, ok := m.Vectors[text]; ok {
		if len(pinned) != m.dimensions {
			return nil, fmt.Errorf("pinned vector for %q has dimension %d, want %d", text, len(pinned), m.dimensions)
		}
		return pinned, nil
	}

	vector := make([]float32, m.dimensions)
	var norm float64
	for i := range vector {
		h := fnv.New32a()
		fmt.Fprintf(h, "%s/%d", text, i)
		component := float64(h.Sum32())/float64(^uint32(0)) - 0.5
		vector[i] = float32(component)
		norm += component * component
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector, nil
}

func (m *MockEmbedder) Dimensions() int { return m.dimensions }

func (m *MockEmbedder) Close() error { return nil }

var _ Client = (*MockEmbedder)(nil)
