package lodestone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/invopop/jsonschema"

	"github.com/lodestone-ai/lodestone/pkg/embedder"
	"github.com/lodestone-ai/lodestone/pkg/reranker"
	"github.com/lodestone-ai/lodestone/pkg/store"
)

// ErrInvalidInput is returned when a tool invocation violates the input
// contract: unknown fields, missing required fields, or malformed values.
var ErrInvalidInput = errors.New("invalid tool input")

const defaultDescription = "Search a vector index for context relevant to a natural-language query. " +
	"Returns the metadata of the most similar stored chunks."

// Input is the typed invocation payload. Filter is honored only when the
// tool was built with EnableFilter.
type Input struct {
	// QueryText is the natural-language query to retrieve context for.
	QueryText string `json:"queryText"`
	// TopK caps the number of context chunks returned. Must be positive.
	TopK int `json:"topK"`
	// Filter is structured-filter-as-text or an opaque string the store
	// interprets itself. Empty means unfiltered.
	Filter string `json:"filter,omitempty"`
}

// Output is the invocation result: ordered projected metadata, one entry
// per retrieved chunk. Empty when the store is unresolvable or nothing
// matched.
type Output struct {
	RelevantContext []any `json:"relevantContext"`
}

// ToolConfig parameterizes a retrieval tool at build time. The
// configuration is captured immutably; nothing else persists between
// invocations.
type ToolConfig struct {
	// StoreName names the vector store resolved from Resolver on each call.
	StoreName string
	// IndexName names the index within the store to search.
	IndexName string
	// Resolver looks the store up at invocation time, so stores registered
	// after the tool was built are still found.
	Resolver store.Resolver
	// Embedder computes the query embedding.
	Embedder embedder.Client

	// Reranker, when set, re-scores search results before projection.
	Reranker reranker.Client
	// RerankOptions configures the reranker. A zero TopK defaults to the
	// request's topK on each call.
	RerankOptions reranker.Options

	// EnableFilter adds the filter field to the input contract. Without it
	// a supplied filter is rejected, not ignored.
	EnableFilter bool

	// ID overrides the derived tool identifier.
	ID string
	// Description overrides the default tool description.
	Description string
	// Logger receives one debug record per invocation. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Tool is a self-describing retrieval pipeline callable by agent hosts.
// Safe for concurrent use: invocations share only the immutable
// configuration and the external store/model handles.
type Tool struct {
	config      ToolConfig
	name        string
	description string
	schema      *jsonschema.Schema
	logger      *slog.Logger
}

// New builds a retrieval tool from config.
func New(config ToolConfig) (*Tool, error) {
	if config.StoreName == "" {
		return nil, fmt.Errorf("store name is required")
	}
	if config.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if config.Resolver == nil {
		return nil, fmt.Errorf("store resolver is required")
	}
	if config.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	name := config.ID
	if name == "" {
		name = fmt.Sprintf("retrieve_%s_%s", config.StoreName, config.IndexName)
	}
	description := config.Description
	if description == "" {
		description = defaultDescription
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Tool{
		config:      config,
		name:        name,
		description: description,
		schema:      buildInputSchema(config.EnableFilter),
		logger:      logger,
	}, nil
}

// Name returns the tool identifier.
func (t *Tool) Name() string { return t.name }

// Description returns the tool description shown to agent hosts.
func (t *Tool) Description() string { return t.description }

// InputSchema returns the JSON schema of the input contract. The schema is
// closed: additionalProperties is false, and the filter field exists only
// on tools built with EnableFilter.
func (t *Tool) InputSchema() *jsonschema.Schema { return t.schema }

// Invoke runs the retrieval pipeline with a typed input.
func (t *Tool) Invoke(ctx context.Context, in Input) (Output, error) {
	if in.QueryText == "" {
		return Output{}, fmt.Errorf("%w: queryText is required", ErrInvalidInput)
	}
	if in.TopK <= 0 {
		return Output{}, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidInput, in.TopK)
	}
	if in.Filter != "" && !t.config.EnableFilter {
		return Output{}, fmt.Errorf("%w: filter is not accepted by this tool", ErrInvalidInput)
	}
	return t.run(ctx, in)
}

// Call runs the retrieval pipeline from a raw JSON payload, enforcing the
// strict input contract at the boundary before any pipeline logic runs.
func (t *Tool) Call(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	in, err := t.decodeInput(raw)
	if err != nil {
		return nil, err
	}

	out, err := t.run(ctx, in)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return encoded, nil
}

// wireInput mirrors Input for boundary decoding. Pointers distinguish
// absent fields from zero values; json.Number admits numeric-like topK
// input (3, 3.0, "never strings") before coercion.
type wireInput struct {
	QueryText *string      `json:"queryText"`
	TopK      *json.Number `json:"topK"`
	Filter    *string      `json:"filter"`
}

func (t *Tool) decodeInput(raw json.RawMessage) (Input, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()

	var wire wireInput
	if err := decoder.Decode(&wire); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if wire.QueryText == nil || *wire.QueryText == "" {
		return Input{}, fmt.Errorf("%w: queryText is required", ErrInvalidInput)
	}
	if wire.TopK == nil {
		return Input{}, fmt.Errorf("%w: topK is required", ErrInvalidInput)
	}
	topK, err := coerceTopK(*wire.TopK)
	if err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	in := Input{QueryText: *wire.QueryText, TopK: topK}
	if wire.Filter != nil {
		if !t.config.EnableFilter {
			return Input{}, fmt.Errorf("%w: unknown field \"filter\"", ErrInvalidInput)
		}
		in.Filter = *wire.Filter
	}
	return in, nil
}

// coerceTopK accepts integral numeric input, including float encodings
// like 3.0, and rejects everything else.
func coerceTopK(n json.Number) (int, error) {
	if v, err := n.Int64(); err == nil {
		if v <= 0 {
			return 0, fmt.Errorf("topK must be positive, got %d", v)
		}
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("topK must be a number, got %q", n.String())
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("topK must be an integer, got %v", f)
	}
	if f <= 0 {
		return 0, fmt.Errorf("topK must be positive, got %v", f)
	}
	return int(f), nil
}

// buildInputSchema constructs one of the two contract variants. The
// variants are fixed at build time: filtered tools declare the filter
// field, unfiltered tools do not.
func buildInputSchema(enableFilter bool) *jsonschema.Schema {
	properties := jsonschema.NewProperties()
	properties.Set("queryText", &jsonschema.Schema{
		Type:        "string",
		Description: "The natural-language query to retrieve context for.",
	})
	properties.Set("topK", &jsonschema.Schema{
		Type:        "number",
		Description: "Maximum number of context chunks to return.",
	})
	if enableFilter {
		properties.Set("filter", &jsonschema.Schema{
			Type:        "string",
			Description: "Metadata filter as JSON text, or an opaque filter string the store interprets.",
		})
	}

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             []string{"queryText", "topK"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}
