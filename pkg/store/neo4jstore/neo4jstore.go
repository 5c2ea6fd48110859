// Package neo4jstore provides a vector store backed by Neo4j's native
// vector indexes. Documents become :Chunk nodes carrying an embedding
// property; queries go through db.index.vector.queryNodes.
//
// Structured metadata filters are evaluated client-side after an
// over-fetched index query, since arbitrary metadata keys cannot be bound
// into the index call itself.
package neo4jstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/lodestone-ai/lodestone/pkg/store"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

// overFetchFactor controls how many extra candidates a filtered query pulls
// from the index before client-side filtering trims them back to topK.
const overFetchFactor = 4

// Config holds Neo4j connection settings.
type Config struct {
	URI      string `json:"uri" yaml:"uri"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
}

// Store is a store.VectorStore backed by a Neo4j database.
type Store struct {
	client   neo4j.DriverWithContext
	database string
}

// New creates a Neo4j-backed store.
func New(cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}

	return &Store{client: driver, database: database}, nil
}

func (s *Store) CreateIndex(ctx context.Context, indexName string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dimension)
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Index names cannot be bound as parameters.
		query := fmt.Sprintf(`
			CREATE VECTOR INDEX `+"`%s`"+` IF NOT EXISTS
			FOR (c:Chunk) ON (c.embedding)
			OPTIONS {indexConfig: {
				`+"`vector.dimensions`"+`: $dimension,
				`+"`vector.similarity_function`"+`: 'cosine'
			}}
		`, indexName)
		_, err := tx.Run(ctx, query, map[string]any{
			"dimension": dimension,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("create vector index %q: %w", indexName, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, indexName string, docs []store.Document) error {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (c:Chunk {id: $id, index_name: $indexName})
			SET c.embedding = $embedding,
			    c.metadata = $metadata
		`
		for _, doc := range docs {
			metadata, err := json.Marshal(doc.Metadata)
			if err != nil {
				return nil, fmt.Errorf("marshal metadata for %q: %w", doc.ID, err)
			}
			_, err = tx.Run(ctx, query, map[string]any{
				"id":        doc.ID,
				"indexName": indexName,
				"embedding": toFloat64s(doc.Vector),
				"metadata":  string(metadata),
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("upsert into %q: %w", indexName, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, indexName string, vector []float32, topK int, f *filter.Filter) ([]types.SearchResult, error) {
	if f.IsRaw() {
		return nil, store.ErrRawFilterUnsupported
	}
	if topK <= 0 {
		return []types.SearchResult{}, nil
	}

	fetch := topK
	if f != nil {
		fetch = topK * overFetchFactor
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			CALL db.index.vector.queryNodes($indexName, $fetch, $embedding)
			YIELD node, score
			WHERE node.index_name = $indexName
			RETURN node.id AS id, node.metadata AS metadata, score
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"indexName": indexName,
			"fetch":     fetch,
			"embedding": toFloat64s(vector),
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("query vector index %q: %w", indexName, err)
	}

	results := []types.SearchResult{}
	for _, record := range records.([]*neo4j.Record) {
		id, _ := record.Get("id")
		rawMetadata, _ := record.Get("metadata")
		score, _ := record.Get("score")

		var metadata map[string]any
		if text, ok := rawMetadata.(string); ok && text != "" {
			if err := json.Unmarshal([]byte(text), &metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %v: %w", id, err)
			}
		}
		if !f.Matches(metadata) {
			continue
		}

		results = append(results, types.SearchResult{
			ID:       fmt.Sprintf("%v", id),
			Score:    toFloat(score),
			Metadata: metadata,
		})
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

func (s *Store) DeleteIndex(ctx context.Context, indexName string) error {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MATCH (c:Chunk {index_name: $indexName})
			DETACH DELETE c
		`, map[string]any{"indexName": indexName})
		if err != nil {
			return nil, err
		}
		_, err = tx.Run(ctx, fmt.Sprintf("DROP INDEX `%s` IF EXISTS", indexName), nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("delete index %q: %w", indexName, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close(context.Background())
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

var _ store.VectorStore = (*Store)(nil)
