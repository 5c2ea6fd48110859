package lodestone

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

// run executes one retrieval: resolve store → parse filter → embed and
// search → optionally rerank → project metadata. Each call is independent;
// nothing is retained between invocations.
func (t *Tool) run(ctx context.Context, in Input) (Output, error) {
	vectorStore, ok := t.config.Resolver.Get(t.config.StoreName)
	if !ok {
		// A missing store is a wiring gap, not a live-call failure: the
		// caller sees "no context available" instead of a hard error.
		t.logger.DebugContext(ctx, "vector store not registered, returning empty context",
			slog.String("tool", t.name),
			slog.String("store", t.config.StoreName),
		)
		return Output{RelevantContext: []any{}}, nil
	}

	var f *filter.Filter
	if t.config.EnableFilter && in.Filter != "" {
		f = filter.Parse(in.Filter)
	}

	results, err := QuerySearch(ctx, vectorStore, t.config.IndexName, in.QueryText, t.config.Embedder, in.TopK, f)
	if err != nil {
		return Output{}, err
	}

	t.logger.DebugContext(ctx, "retrieval search executed",
		slog.String("tool", t.name),
		slog.String("store", t.config.StoreName),
		slog.String("index", t.config.IndexName),
		slog.Int("top_k", in.TopK),
		slog.Any("filter", effectiveFilter(f)),
		slog.Int("results", len(results)),
	)

	if t.config.Reranker == nil {
		return Output{RelevantContext: projectMetadata(results)}, nil
	}

	opts := t.config.RerankOptions
	if opts.TopK <= 0 {
		opts.TopK = in.TopK
	}
	ranked, err := t.config.Reranker.Rank(ctx, in.QueryText, results, opts)
	if err != nil {
		return Output{}, fmt.Errorf("rerank: %w", err)
	}
	return Output{RelevantContext: projectReranked(ranked)}, nil
}

// projectMetadata strips search results down to their metadata payloads.
// Results without metadata project to nil rather than being dropped, so
// output positions always line up with input positions.
func projectMetadata(results []types.SearchResult) []any {
	projected := make([]any, len(results))
	for i, r := range results {
		if r.Metadata != nil {
			projected[i] = r.Metadata
		}
	}
	return projected
}

func projectReranked(results []types.RerankedResult) []any {
	projected := make([]any, len(results))
	for i, r := range results {
		if r.Result.Metadata != nil {
			projected[i] = r.Result.Metadata
		}
	}
	return projected
}

func effectiveFilter(f *filter.Filter) any {
	switch {
	case f == nil:
		return nil
	case f.IsRaw():
		return f.Raw
	default:
		return f.Fields
	}
}
