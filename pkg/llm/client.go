// Package llm provides a minimal chat-completion client used by the
// LLM-judged relevance scorer. It wraps OpenAI-compatible APIs and offers
// an optional circuit-breaker decorator for flaky providers.
package llm

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Response is a chat completion result.
type Response struct {
	Content string
}

// Client is a chat-completion client.
type Client interface {
	// Chat sends the messages and returns the model's reply.
	Chat(ctx context.Context, messages []Message) (*Response, error)

	// Close cleans up any resources held by the client.
	Close() error
}

// Config holds configuration for chat clients.
type Config struct {
	// Model is the provider-specific model identifier.
	Model string `json:"model"`
	// BaseURL overrides the provider endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty"`
	// Temperature, when non-nil, overrides the provider default.
	Temperature *float32 `json:"temperature,omitempty"`
	// MaxTokens caps the completion length when positive.
	MaxTokens int `json:"max_tokens,omitempty"`
}
