/*
Package reranker provides second-stage relevance scoring for vector search
results.

A reranker re-scores an initial candidate set against the query using a
secondary relevance signal, blends that signal with the original vector
similarity and the candidate's position, and returns the candidates in
descending composite-score order. Reranking narrows or reorders a candidate
set; it never invents new candidates.

Usage:

	// LLM-judged relevance
	llmClient := llm.NewOpenAIClient(apiKey, llm.Config{Model: "gpt-4o-mini"})
	rr, err := reranker.NewClient(reranker.ClientConfig{
		Provider:  reranker.ProviderLLM,
		LLMClient: llmClient,
	})

	ranked, err := rr.Rank(ctx, "search query", candidates, reranker.Options{TopK: 5})

Scoring strategies:
  - LLM: a chat model judges query/passage relevance and returns a score
  - Embedding: cosine similarity between query and passage embeddings
  - Mock: deterministic scores for testing

A failed scorer call fails the whole Rank call. Callers that want raw
search order should skip reranking, not rely on a fallback.
*/
package reranker
