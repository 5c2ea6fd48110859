package reranker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/lodestone-ai/lodestone/pkg/types"
)

// Weights controls how the composite rerank score is blended from the
// individual signals. Weights need not sum to one.
type Weights struct {
	// Relevance weights the secondary model's relevance score.
	Relevance float64 `json:"relevance"`
	// Vector weights the original store similarity score.
	Vector float64 `json:"vector"`
	// Position weights the candidate's rank in the original result order.
	Position float64 `json:"position"`
}

// DefaultWeights blends relevance and vector similarity evenly with a
// small positional prior.
func DefaultWeights() Weights {
	return Weights{Relevance: 0.4, Vector: 0.4, Position: 0.2}
}

// Options configures a single Rank call.
type Options struct {
	// TopK caps the number of results returned. Non-positive means all
	// candidates are returned; callers typically default this to the topK
	// of the originating search.
	TopK int
	// Weights overrides DefaultWeights when non-nil.
	Weights *Weights
}

// Client re-scores and reorders a candidate set for a query.
type Client interface {
	// Rank returns the candidates re-scored against query, ordered
	// descending by composite score and truncated to opts.TopK. Ties keep
	// the candidates' original relative order, so identical inputs always
	// produce identical output.
	Rank(ctx context.Context, query string, candidates []types.SearchResult, opts Options) ([]types.RerankedResult, error)

	// Close cleans up any resources held by the client.
	Close() error
}

// Scorer produces the secondary relevance signal for one query/passage pair.
type Scorer interface {
	Score(ctx context.Context, query, passage string) (float64, error)
	Close() error
}

// Config holds common reranker configuration.
type Config struct {
	// Model is the provider-specific model identifier.
	Model string `json:"model"`
	// MaxConcurrency bounds concurrent scorer calls per Rank invocation.
	MaxConcurrency int `json:"max_concurrency"`
	// TextField names the metadata field holding the candidate's text.
	// Candidates without it are scored on their serialized metadata.
	TextField string `json:"text_field"`
}

// reranker blends a Scorer's signal with vector and position scores.
type reranker struct {
	scorer    Scorer
	config    Config
	semaphore chan struct{}
}

// New creates a reranker around the given scoring strategy.
func New(scorer Scorer, config Config) Client {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.TextField == "" {
		config.TextField = "text"
	}
	return &reranker{
		scorer:    scorer,
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrency),
	}
}

func (r *reranker) Rank(ctx context.Context, query string, candidates []types.SearchResult, opts Options) ([]types.RerankedResult, error) {
	if len(candidates) == 0 {
		return []types.RerankedResult{}, nil
	}

	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	relevance := make([]float64, len(candidates))
	errs := make([]error, len(candidates))
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, c types.SearchResult) {
			defer wg.Done()

			r.semaphore <- struct{}{}
			defer func() { <-r.semaphore }()

			score, err := r.scorer.Score(ctx, query, r.passageText(c))
			relevance[idx] = score
			errs[idx] = err
		}(i, candidate)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("score candidate %d: %w", i, err)
		}
	}

	ranked := make([]types.RerankedResult, len(candidates))
	for i, candidate := range candidates {
		details := types.ScoreDetails{
			Relevance: relevance[i],
			Vector:    candidate.Score,
			Position:  1.0 / float64(i+1),
		}
		ranked[i] = types.RerankedResult{
			Result: candidate,
			Score: weights.Relevance*details.Relevance +
				weights.Vector*details.Vector +
				weights.Position*details.Position,
			Details: details,
		}
	}

	// Stable: equal composite scores keep original store order, making
	// reruns on identical input deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if opts.TopK > 0 && len(ranked) > opts.TopK {
		ranked = ranked[:opts.TopK]
	}
	return ranked, nil
}

func (r *reranker) Close() error {
	return r.scorer.Close()
}

// passageText extracts the text to score for a candidate. Falls back to the
// serialized metadata so candidates without a text field still get judged
// on something meaningful.
func (r *reranker) passageText(c types.SearchResult) string {
	if c.Metadata != nil {
		if text, ok := c.Metadata[r.config.TextField].(string); ok && text != "" {
			return text
		}
	}
	raw, err := json.Marshal(c.Metadata)
	if err != nil || c.Metadata == nil {
		return c.ID
	}
	return string(raw)
}
