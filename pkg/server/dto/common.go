package dto

import "github.com/invopop/jsonschema"

// ToolDescription describes a retrieval tool to HTTP clients.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// ToolListResponse is the payload of GET /api/v1/tools.
type ToolListResponse struct {
	Tools []ToolDescription `json:"tools"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
