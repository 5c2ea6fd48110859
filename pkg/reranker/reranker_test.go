package reranker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-ai/lodestone/pkg/types"
)

// fixedScorer returns preassigned scores keyed by passage text.
type fixedScorer struct {
	scores map[string]float64
	err    error
}

func (s *fixedScorer) Score(_ context.Context, _, passage string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[passage], nil
}

func (s *fixedScorer) Close() error { return nil }

func candidates() []types.SearchResult {
	return []types.SearchResult{
		{ID: "a", Score: 0.9, Metadata: map[string]any{"text": "alpha"}},
		{ID: "b", Score: 0.8, Metadata: map[string]any{"text": "beta"}},
		{ID: "c", Score: 0.7, Metadata: map[string]any{"text": "gamma"}},
	}
}

func TestRankOrdersByCompositeScore(t *testing.T) {
	scorer := &fixedScorer{scores: map[string]float64{
		"alpha": 0.1,
		"beta":  0.9,
		"gamma": 0.5,
	}}
	client := New(scorer, Config{})

	ranked, err := client.Rank(context.Background(), "query", candidates(), Options{})
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	// beta's relevance dominates despite its lower vector score.
	assert.Equal(t, "b", ranked[0].Result.ID)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	scorer := &fixedScorer{scores: map[string]float64{
		"alpha": 0.5,
		"beta":  0.5,
		"gamma": 0.5,
	}}
	client := New(scorer, Config{MaxConcurrency: 3})

	first, err := client.Rank(context.Background(), "query", candidates(), Options{})
	require.NoError(t, err)

	for run := 0; run < 10; run++ {
		again, err := client.Rank(context.Background(), "query", candidates(), Options{})
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for i := range first {
			assert.Equal(t, first[i].Result.ID, again[i].Result.ID)
			assert.Equal(t, first[i].Score, again[i].Score)
		}
	}
}

func TestRankStableTieBreakKeepsOriginalOrder(t *testing.T) {
	// Identical relevance; equal vector scores and positions differ per
	// candidate, so force a full tie by zeroing those weights.
	scorer := &fixedScorer{scores: map[string]float64{
		"alpha": 0.5,
		"beta":  0.5,
		"gamma": 0.5,
	}}
	client := New(scorer, Config{})

	ranked, err := client.Rank(context.Background(), "query", candidates(), Options{
		Weights: &Weights{Relevance: 1, Vector: 0, Position: 0},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "a", ranked[0].Result.ID)
	assert.Equal(t, "b", ranked[1].Result.ID)
	assert.Equal(t, "c", ranked[2].Result.ID)
}

func TestRankTruncatesToTopK(t *testing.T) {
	scorer := &fixedScorer{scores: map[string]float64{
		"alpha": 0.9,
		"beta":  0.5,
		"gamma": 0.1,
	}}
	client := New(scorer, Config{})

	ranked, err := client.Rank(context.Background(), "query", candidates(), Options{TopK: 2})
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Result.ID)
}

func TestRankPropagatesScorerError(t *testing.T) {
	scorer := &fixedScorer{err: errors.New("model unavailable")}
	client := New(scorer, Config{})

	ranked, err := client.Rank(context.Background(), "query", candidates(), Options{})
	require.Error(t, err)
	assert.Nil(t, ranked)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestRankEmptyCandidates(t *testing.T) {
	client := New(NewMockScorer(), Config{})

	ranked, err := client.Rank(context.Background(), "query", nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRankWeightsShiftOrdering(t *testing.T) {
	scorer := &fixedScorer{scores: map[string]float64{
		"alpha": 0.0,
		"beta":  1.0,
		"gamma": 0.0,
	}}
	client := New(scorer, Config{})

	// Vector-only weights preserve the store's ordering.
	vectorOnly, err := client.Rank(context.Background(), "query", candidates(), Options{
		Weights: &Weights{Vector: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", vectorOnly[0].Result.ID)

	// Relevance-only weights promote beta.
	relevanceOnly, err := client.Rank(context.Background(), "query", candidates(), Options{
		Weights: &Weights{Relevance: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", relevanceOnly[0].Result.ID)
}

func TestPassageTextFallbacks(t *testing.T) {
	r := New(NewMockScorer(), Config{}).(*reranker)

	assert.Equal(t, "alpha", r.passageText(types.SearchResult{
		ID:       "a",
		Metadata: map[string]any{"text": "alpha"},
	}))

	// No text field: serialized metadata.
	assert.Equal(t, `{"title":"doc"}`, r.passageText(types.SearchResult{
		ID:       "a",
		Metadata: map[string]any{"title": "doc"},
	}))

	// No metadata at all: the ID.
	assert.Equal(t, "a", r.passageText(types.SearchResult{ID: "a"}))
}

func TestNewClientProviders(t *testing.T) {
	tests := []struct {
		name    string
		config  ClientConfig
		wantErr bool
	}{
		{
			name:   "mock provider",
			config: ClientConfig{Provider: ProviderMock},
		},
		{
			name:    "llm provider without client",
			config:  ClientConfig{Provider: ProviderLLM},
			wantErr: true,
		},
		{
			name:    "embedding provider without client",
			config:  ClientConfig{Provider: ProviderEmbedding},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			config:  ClientConfig{Provider: "bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
		wantErr bool
	}{
		{name: "clean json", content: `{"score": 0.75}`, want: 0.75},
		{name: "markdown fenced", content: "```json\n{\"score\": 0.5}\n```", want: 0.5},
		{name: "single quotes", content: `{'score': 0.25}`, want: 0.25},
		{name: "out of range", content: `{"score": 1.5}`, wantErr: true},
		{name: "no json at all", content: `definitely relevant`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractScore(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := cosineSimilarity([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)

	_, err = cosineSimilarity([]float32{1, 0}, []float32{1})
	assert.Error(t, err)

	_, err = cosineSimilarity([]float32{0, 0}, []float32{1, 0})
	assert.Error(t, err)
}
