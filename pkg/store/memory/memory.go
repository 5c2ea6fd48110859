// Package memory provides an in-process vector store backed by plain maps.
// It is intended for tests, examples, and small corpora; similarity search
// is a brute-force cosine scan over the index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/lodestone-ai/lodestone/pkg/store"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

type index struct {
	dimension int
	docs      map[string]store.Document
}

// Store is an in-memory store.VectorStore. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	indexes map[string]*index
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{indexes: make(map[string]*index)}
}

func (s *Store) CreateIndex(_ context.Context, indexName string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.indexes[indexName]; exists {
		return nil
	}
	s.indexes[indexName] = &index{
		dimension: dimension,
		docs:      make(map[string]store.Document),
	}
	return nil
}

func (s *Store) Upsert(_ context.Context, indexName string, docs []store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[indexName]
	if !ok {
		return fmt.Errorf("upsert into %q: %w", indexName, store.ErrIndexNotFound)
	}
	for _, doc := range docs {
		if len(doc.Vector) != idx.dimension {
			return fmt.Errorf("document %q has dimension %d, index %q expects %d: %w",
				doc.ID, len(doc.Vector), indexName, idx.dimension, store.ErrDimensionMismatch)
		}
		idx.docs[doc.ID] = doc
	}
	return nil
}

func (s *Store) Query(_ context.Context, indexName string, vector []float32, topK int, f *filter.Filter) ([]types.SearchResult, error) {
	if f.IsRaw() {
		return nil, store.ErrRawFilterUnsupported
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[indexName]
	if !ok {
		return nil, fmt.Errorf("query %q: %w", indexName, store.ErrIndexNotFound)
	}
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, index %q expects %d: %w",
			len(vector), indexName, idx.dimension, store.ErrDimensionMismatch)
	}
	if topK <= 0 {
		return []types.SearchResult{}, nil
	}

	results := make([]types.SearchResult, 0, len(idx.docs))
	for _, doc := range idx.docs {
		if !f.Matches(doc.Metadata) {
			continue
		}
		results = append(results, types.SearchResult{
			ID:       doc.ID,
			Score:    cosine(vector, doc.Vector),
			Metadata: doc.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Store) DeleteIndex(_ context.Context, indexName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, indexName)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes = make(map[string]*index)
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ store.VectorStore = (*Store)(nil)
