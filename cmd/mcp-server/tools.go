package main

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	lode "github.com/lodestone-ai/lodestone"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

// RetrieveRequest represents the input for a retrieval tool.
type RetrieveRequest struct {
	QueryText string `json:"queryText"`
	TopK      int    `json:"topK"`
	Filter    string `json:"filter,omitempty"`
}

// ToolResponse represents a generic tool response
type ToolResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterTools registers every built retrieval tool with Genkit.
func (s *MCPServer) RegisterTools(g *genkit.Genkit) {
	for _, tool := range s.client.Tools() {
		genkit.DefineTool(g, tool.Name(), tool.Description(), s.retrieveHandler(tool))
		s.logger.Info("tool registered", "name", tool.Name())
	}
}

// retrieveHandler adapts a retrieval tool to the Genkit tool contract.
// Retrieval failures are reported in the response rather than as Go
// errors so the calling agent can read them.
func (s *MCPServer) retrieveHandler(tool *lode.Tool) func(*ai.ToolContext, *RetrieveRequest) (*ToolResponse, error) {
	return func(toolCtx *ai.ToolContext, input *RetrieveRequest) (*ToolResponse, error) {
		ctx := context.WithValue(context.Background(), types.ContextKeyRequestSource, "mcp")

		out, err := tool.Invoke(ctx, lode.Input{
			QueryText: input.QueryText,
			TopK:      input.TopK,
			Filter:    input.Filter,
		})
		if err != nil {
			return &ToolResponse{
				Success: false,
				Error:   err.Error(),
			}, nil
		}

		return &ToolResponse{
			Success: true,
			Message: "Retrieval completed successfully",
			Data:    out,
		}, nil
	}
}
