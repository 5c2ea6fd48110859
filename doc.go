// Package lodestone builds agent-callable vector retrieval tools for Go.
//
// A lodestone Tool turns a natural-language query into ranked context
// chunks drawn from a vector index: the query is embedded, similarity
// searched with an optional metadata filter, optionally reranked by a
// secondary relevance model, and projected down to the metadata payloads
// the caller wants.
//
// # Basic Usage
//
// Build a tool over a registered vector store:
//
//	registry := store.NewRegistry()
//	registry.Register("docs", memoryStore)
//
//	embedderClient := embedder.NewOpenAIEmbedder("your-api-key", embedder.Config{
//		Model: "text-embedding-3-small",
//	})
//
//	tool, err := lodestone.New(lodestone.ToolConfig{
//		StoreName: "docs",
//		IndexName: "articles",
//		Resolver:  registry,
//		Embedder:  embedderClient,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Invoking
//
// Hosts that speak JSON call the tool through its strict boundary:
//
//	raw, err := tool.Call(ctx, json.RawMessage(`{"queryText": "what is photosynthesis", "topK": 3}`))
//
// Go callers use the typed entry point:
//
//	out, err := tool.Invoke(ctx, lodestone.Input{QueryText: "what is photosynthesis", TopK: 3})
//	for _, chunk := range out.RelevantContext {
//		fmt.Println(chunk)
//	}
//
// # Filtering and Reranking
//
// Set EnableFilter to accept a filter field on the input contract; filter
// text is parsed by pkg/filter and degrades to a raw passthrough for
// stores that interpret their own filter grammar. Configure a
// reranker.Client to re-score candidates with an LLM or embedding signal
// before projection; rerank failures fail the invocation rather than
// silently returning store order.
package lodestone
