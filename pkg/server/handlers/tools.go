package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lodestone-ai/lodestone"
	"github.com/lodestone-ai/lodestone/pkg/server/dto"
)

// ToolsHandler exposes the retrieval tool catalog over HTTP.
type ToolsHandler struct {
	client *lodestone.Client
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(client *lodestone.Client) *ToolsHandler {
	return &ToolsHandler{client: client}
}

// ListTools handles GET /api/v1/tools
func (h *ToolsHandler) ListTools(c *gin.Context) {
	tools := h.client.Tools()
	descriptions := make([]dto.ToolDescription, 0, len(tools))
	for _, tool := range tools {
		descriptions = append(descriptions, dto.ToolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	c.JSON(http.StatusOK, dto.ToolListResponse{Tools: descriptions})
}

// GetTool handles GET /api/v1/tools/:name
func (h *ToolsHandler) GetTool(c *gin.Context) {
	tool, ok := h.client.Tool(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "tool not found",
			Message: c.Param("name"),
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, dto.ToolDescription{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: tool.InputSchema(),
	})
}

// InvokeTool handles POST /api/v1/tools/:name/invoke. The request body is
// handed to the tool's strict JSON boundary unchanged; contract violations
// come back as 400, pipeline failures as 502.
func (h *ToolsHandler) InvokeTool(c *gin.Context) {
	tool, ok := h.client.Tool(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "tool not found",
			Message: c.Param("name"),
			Code:    http.StatusNotFound,
		})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	result, err := tool.Call(c.Request.Context(), body)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, lodestone.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   "tool invocation failed",
			Message: err.Error(),
			Code:    status,
		})
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}
