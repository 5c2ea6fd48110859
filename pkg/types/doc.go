// Package types defines the shared data model for the retrieval pipeline:
// search results as returned by a vector store, reranked results produced
// by a second-stage scorer, and the context keys used to thread request
// identity through logging and telemetry.
package types
