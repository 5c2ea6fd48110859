/*
Package store defines the vector store contract used by the retrieval
pipeline, plus a runtime registry that tools resolve stores from by name
at call time.

Bundled implementations live in the subpackages memory, badgerstore, and
neo4jstore. All of them evaluate structured metadata filters; none accept
raw (unparseable) filter strings and will return ErrRawFilterUnsupported
for those.
*/
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

var (
	// ErrIndexNotFound is returned when an operation names an index the
	// store does not have.
	ErrIndexNotFound = errors.New("index not found")

	// ErrRawFilterUnsupported is returned by stores that only evaluate
	// structured filters when given a raw passthrough filter.
	ErrRawFilterUnsupported = errors.New("raw filter strings are not supported by this store")

	// ErrDimensionMismatch is returned when a vector's dimension does not
	// match the index it is written to or queried against.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Document is a vector plus its identifying metadata, as stored in an index.
type Document struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorStore is the persistence contract the retrieval pipeline runs
// against. Query returns at most topK results ordered by descending
// similarity; a nil filter matches everything.
type VectorStore interface {
	CreateIndex(ctx context.Context, indexName string, dimension int) error
	Upsert(ctx context.Context, indexName string, docs []Document) error
	Query(ctx context.Context, indexName string, vector []float32, topK int, f *filter.Filter) ([]types.SearchResult, error)
	DeleteIndex(ctx context.Context, indexName string) error
	Close() error
}

// Resolver looks stores up by name at call time. Tools hold a Resolver
// rather than a store so that stores registered after the tool was built
// are still found, and removed stores stop resolving.
type Resolver interface {
	Get(name string) (VectorStore, bool)
}

// Registry is a mutable, concurrency-safe store catalog. The zero value
// is not usable; create one with NewRegistry.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]VectorStore
}

// NewRegistry creates an empty store registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]VectorStore)}
}

// Register adds or replaces the store under name.
func (r *Registry) Register(name string, s VectorStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[name] = s
}

// Unregister removes the store under name, if present. The store itself
// is not closed.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, name)
}

// Get returns the store registered under name.
func (r *Registry) Get(name string) (VectorStore, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[name]
	return s, ok
}

// Names returns all registered store names, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	return names
}

// Close closes every registered store, returning the first error seen.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, s := range r.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.stores, name)
	}
	return firstErr
}

// compile-time check
var _ Resolver = (*Registry)(nil)
