package lodestone

import (
	"context"
	"fmt"

	"github.com/lodestone-ai/lodestone/pkg/embedder"
	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/lodestone-ai/lodestone/pkg/store"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

// QuerySearch embeds queryText and runs a similarity search against the
// named index. At most topK results come back, in the order the store
// returned them. There is no retry: a failed embedding or store call fails
// the search, and the store is never mutated.
func QuerySearch(
	ctx context.Context,
	vectorStore store.VectorStore,
	indexName string,
	queryText string,
	embedderClient embedder.Client,
	topK int,
	f *filter.Filter,
) ([]types.SearchResult, error) {
	vector, err := embedderClient.EmbedSingle(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := vectorStore.Query(ctx, indexName, vector, topK, f)
	if err != nil {
		return nil, fmt.Errorf("search index %q: %w", indexName, err)
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
