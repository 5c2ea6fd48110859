// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// embedding providers: OpenAI-compatible APIs and local embedding via
// go-embedeverything.
//
// # Usage
//
//	// Create an OpenAI embedder
//	emb := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model: "text-embedding-3-small",
//	})
//
//	// Embed text
//	vector, err := emb.EmbedSingle(ctx, "hello world")
//
// Implementations handle request batching internally based on provider
// limits; Embed accepts multiple texts in a single call and EmbedSingle is
// the convenience form for one.
package embedder
