package lodestone

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/lodestone-ai/lodestone/pkg/embedder"
	"github.com/lodestone-ai/lodestone/pkg/reranker"
	"github.com/lodestone-ai/lodestone/pkg/store"
)

// Options configures a Client.
type Options struct {
	// Embedder computes query embeddings for every tool built by this
	// client. Required.
	Embedder embedder.Client
	// Reranker, when set, is attached to every tool built by this client
	// unless the tool spec opts out.
	Reranker reranker.Client
	// RerankWeights overrides the default score blending for every tool
	// built by this client.
	RerankWeights *reranker.Weights
	// Logger is handed to built tools. Nil means slog.Default().
	Logger *slog.Logger
}

// ToolSpec describes one retrieval tool for Client.BuildTool.
type ToolSpec struct {
	StoreName    string `json:"store_name" yaml:"store_name" mapstructure:"store_name"`
	IndexName    string `json:"index_name" yaml:"index_name" mapstructure:"index_name"`
	EnableFilter bool   `json:"enable_filter" yaml:"enable_filter" mapstructure:"enable_filter"`
	// DisableRerank builds the tool without the client's reranker.
	DisableRerank bool   `json:"disable_rerank" yaml:"disable_rerank" mapstructure:"disable_rerank"`
	RerankTopK    int    `json:"rerank_top_k" yaml:"rerank_top_k" mapstructure:"rerank_top_k"`
	ID            string `json:"id" yaml:"id" mapstructure:"id"`
	Description   string `json:"description" yaml:"description" mapstructure:"description"`
}

// Client owns a store registry and the retrieval tools built over it.
// Hosts register stores at runtime; tools resolve them by name on every
// invocation, so registration order and tool build order are independent.
type Client struct {
	registry      *store.Registry
	embedder      embedder.Client
	reranker      reranker.Client
	rerankWeights *reranker.Weights
	logger        *slog.Logger

	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewClient creates a client with an empty store registry.
func NewClient(opts Options) (*Client, error) {
	if opts.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		registry:      store.NewRegistry(),
		embedder:      opts.Embedder,
		reranker:      opts.Reranker,
		rerankWeights: opts.RerankWeights,
		logger:        logger,
		tools:         make(map[string]*Tool),
	}, nil
}

// Registry returns the store registry tools resolve from.
func (c *Client) Registry() *store.Registry {
	return c.registry
}

// BuildTool builds a retrieval tool from spec and adds it to the client's
// catalog under its name.
func (c *Client) BuildTool(spec ToolSpec) (*Tool, error) {
	config := ToolConfig{
		StoreName:    spec.StoreName,
		IndexName:    spec.IndexName,
		Resolver:     c.registry,
		Embedder:     c.embedder,
		EnableFilter: spec.EnableFilter,
		ID:           spec.ID,
		Description:  spec.Description,
		Logger:       c.logger,
	}
	if !spec.DisableRerank {
		config.Reranker = c.reranker
		config.RerankOptions = reranker.Options{TopK: spec.RerankTopK, Weights: c.rerankWeights}
	}

	tool, err := New(config)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tools[tool.Name()]; exists {
		return nil, fmt.Errorf("tool %q already built", tool.Name())
	}
	c.tools[tool.Name()] = tool
	return tool, nil
}

// Tool returns the tool built under name.
func (c *Client) Tool(name string) (*Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tool, ok := c.tools[name]
	return tool, ok
}

// Tools returns every tool in the catalog, in no particular order.
func (c *Client) Tools() []*Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tools := make([]*Tool, 0, len(c.tools))
	for _, tool := range c.tools {
		tools = append(tools, tool)
	}
	return tools
}

// Close closes the registry's stores, the embedder, and the reranker,
// returning the first error seen.
func (c *Client) Close() error {
	var firstErr error
	if err := c.registry.Close(); err != nil {
		firstErr = err
	}
	if err := c.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if c.reranker != nil {
		if err := c.reranker.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
