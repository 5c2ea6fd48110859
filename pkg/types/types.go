package types

// SearchResult is a single candidate returned by a vector store similarity
// search. Ordering within a result set is whatever the store returned,
// assumed descending by Score; the pipeline never re-sorts store output.
type SearchResult struct {
	// ID is the store-assigned document identifier.
	ID string `json:"id"`
	// Score is the similarity score reported by the store.
	Score float64 `json:"score"`
	// Metadata is the non-vector payload attached to the document.
	// May be nil when the store holds no metadata for the document.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RerankedResult wraps a SearchResult with the composite score assigned by
// a reranker. Collections of RerankedResult are ordered descending by Score.
type RerankedResult struct {
	Result SearchResult `json:"result"`
	Score  float64      `json:"score"`
	// Details breaks the composite score down per signal. Zero value when
	// the scorer does not report component scores.
	Details ScoreDetails `json:"details"`
}

// ScoreDetails holds the individual signals that were blended into a
// composite rerank score.
type ScoreDetails struct {
	Relevance float64 `json:"relevance"`
	Vector    float64 `json:"vector"`
	Position  float64 `json:"position"`
}

// ContextKey is the type for values threaded through context.Context.
type ContextKey string

const (
	// ContextKeyRequestID identifies a single tool invocation.
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyToolName identifies the invoked tool.
	ContextKeyToolName ContextKey = "tool_name"
	// ContextKeyRequestSource records where an invocation entered the
	// system (server, mcp, cli).
	ContextKeyRequestSource ContextKey = "request_source"
)
