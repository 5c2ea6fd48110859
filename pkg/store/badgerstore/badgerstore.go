// Package badgerstore provides a vector store persisted in an embedded
// Badger key-value database. Documents are stored as JSON values under
// per-index key prefixes; similarity search scans the index prefix and
// scores each document against the query vector.
//
// It suits single-process deployments that need retrieval state to survive
// restarts without running a database server.
package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/lodestone-ai/lodestone/pkg/store"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

const (
	indexKeyPrefix = "idx/" // idx/<index> -> indexMeta
	docKeyPrefix   = "doc/" // doc/<index>/<id> -> store.Document
)

type indexMeta struct {
	Dimension int `json:"dimension"`
}

// Store is a store.VectorStore backed by a Badger database.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a Badger-backed store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a Badger-backed store with no on-disk state. Useful
// in tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &Store{db: db}, nil
}

func indexKey(indexName string) []byte {
	return []byte(indexKeyPrefix + indexName)
}

func docKey(indexName, id string) []byte {
	return []byte(docKeyPrefix + indexName + "/" + id)
}

func docPrefix(indexName string) []byte {
	return []byte(docKeyPrefix + indexName + "/")
}

func (s *Store) CreateIndex(_ context.Context, indexName string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dimension)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(indexKey(indexName)); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		raw, err := json.Marshal(indexMeta{Dimension: dimension})
		if err != nil {
			return err
		}
		return txn.Set(indexKey(indexName), raw)
	})
}

func (s *Store) getMeta(txn *badger.Txn, indexName string) (indexMeta, error) {
	var meta indexMeta
	item, err := txn.Get(indexKey(indexName))
	if err == badger.ErrKeyNotFound {
		return meta, fmt.Errorf("index %q: %w", indexName, store.ErrIndexNotFound)
	}
	if err != nil {
		return meta, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	return meta, err
}

func (s *Store) Upsert(_ context.Context, indexName string, docs []store.Document) error {
	return s.db.Update(func(txn *badger.Txn) error {
		meta, err := s.getMeta(txn, indexName)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if len(doc.Vector) != meta.Dimension {
				return fmt.Errorf("document %q has dimension %d, index %q expects %d: %w",
					doc.ID, len(doc.Vector), indexName, meta.Dimension, store.ErrDimensionMismatch)
			}
			raw, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal document %q: %w", doc.ID, err)
			}
			if err := txn.Set(docKey(indexName, doc.ID), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Query(_ context.Context, indexName string, vector []float32, topK int, f *filter.Filter) ([]types.SearchResult, error) {
	if f.IsRaw() {
		return nil, store.ErrRawFilterUnsupported
	}

	var results []types.SearchResult
	err := s.db.View(func(txn *badger.Txn) error {
		meta, err := s.getMeta(txn, indexName)
		if err != nil {
			return err
		}
		if len(vector) != meta.Dimension {
			return fmt.Errorf("query vector has dimension %d, index %q expects %d: %w",
				len(vector), indexName, meta.Dimension, store.ErrDimensionMismatch)
		}

		prefix := docPrefix(indexName)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc store.Document
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return err
			}
			if !f.Matches(doc.Metadata) {
				continue
			}
			results = append(results, types.SearchResult{
				ID:       doc.ID,
				Score:    cosine(vector, doc.Vector),
				Metadata: doc.Metadata,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []types.SearchResult{}, nil
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
	if results == nil {
		results = []types.SearchResult{}
	}
	return results, nil
}

func (s *Store) DeleteIndex(_ context.Context, indexName string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		prefix := docPrefix(indexName)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return txn.Delete(indexKey(indexName))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
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
