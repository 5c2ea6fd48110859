package lodestone

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-ai/lodestone/pkg/embedder"
	"github.com/lodestone-ai/lodestone/pkg/reranker"
	"github.com/lodestone-ai/lodestone/pkg/store"
	"github.com/lodestone-ai/lodestone/pkg/store/memory"
)

func TestNewClientRequiresEmbedder(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}

func TestClientBuildsAndCatalogsTools(t *testing.T) {
	client, err := NewClient(Options{Embedder: embedder.NewMockEmbedder(8)})
	require.NoError(t, err)

	tool, err := client.BuildTool(ToolSpec{StoreName: "docs", IndexName: "articles"})
	require.NoError(t, err)

	got, ok := client.Tool(tool.Name())
	require.True(t, ok)
	assert.Same(t, tool, got)
	assert.Len(t, client.Tools(), 1)

	// Duplicate names are rejected.
	_, err = client.BuildTool(ToolSpec{StoreName: "docs", IndexName: "articles"})
	assert.Error(t, err)
}

func TestClientToolsResolveStoresRegisteredAfterBuild(t *testing.T) {
	mockEmbedder := embedder.NewMockEmbedder(8)
	client, err := NewClient(Options{Embedder: mockEmbedder})
	require.NoError(t, err)

	tool, err := client.BuildTool(ToolSpec{StoreName: "docs", IndexName: "articles"})
	require.NoError(t, err)

	ctx := context.Background()

	// Before registration: soft-fail to empty context.
	out, err := tool.Invoke(ctx, Input{QueryText: "hello", TopK: 2})
	require.NoError(t, err)
	assert.Empty(t, out.RelevantContext)

	memStore := memory.New()
	require.NoError(t, memStore.CreateIndex(ctx, "articles", 8))
	vector, err := mockEmbedder.EmbedSingle(ctx, "hello")
	require.NoError(t, err)
	require.NoError(t, memStore.Upsert(ctx, "articles", []store.Document{
		{ID: "greeting", Vector: vector, Metadata: map[string]any{"text": "hello there"}},
	}))
	client.Registry().Register("docs", memStore)

	out, err = tool.Invoke(ctx, Input{QueryText: "hello", TopK: 2})
	require.NoError(t, err)
	require.Len(t, out.RelevantContext, 1)
	assert.Equal(t, map[string]any{"text": "hello there"}, out.RelevantContext[0])
}

func TestClientAttachesRerankerUnlessDisabled(t *testing.T) {
	rr, err := reranker.NewClient(reranker.ClientConfig{Provider: reranker.ProviderMock})
	require.NoError(t, err)

	client, err := NewClient(Options{Embedder: embedder.NewMockEmbedder(8), Reranker: rr})
	require.NoError(t, err)

	withRerank, err := client.BuildTool(ToolSpec{StoreName: "docs", IndexName: "a"})
	require.NoError(t, err)
	assert.NotNil(t, withRerank.config.Reranker)

	withoutRerank, err := client.BuildTool(ToolSpec{StoreName: "docs", IndexName: "b", DisableRerank: true})
	require.NoError(t, err)
	assert.Nil(t, withoutRerank.config.Reranker)
}
