// Package llm provides unified LLM provider abstraction and routing.
package llm

import (
	"context"
	"time"

	"github.com/BaSui01/agentflow/types"
)

// Re-exported so callers only ever import the types package once.
type (
	Message      = types.Message
	Role         = types.Role
	ToolCall     = types.ToolCall
	TokenUsage   = types.TokenUsage
	Error        = types.Error
	ErrorCode    = types.ErrorCode
	ImageContent = types.ImageContent
)

// Re-export constants.
const (
	RoleSystem    = types.RoleSystem
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant
	RoleTool      = types.RoleTool
)

// Re-export error codes.
const (
	ErrInvalidRequest      = types.ErrInvalidRequest
	ErrAuthentication      = types.ErrAuthentication
	ErrUnauthorized        = types.ErrUnauthorized
	ErrForbidden           = types.ErrForbidden
	ErrRateLimit           = types.ErrRateLimit
	ErrRateLimited         = types.ErrRateLimited
	ErrQuotaExceeded       = types.ErrQuotaExceeded
	ErrModelNotFound       = types.ErrModelNotFound
	ErrModelOverloaded     = types.ErrModelOverloaded
	ErrContextTooLong      = types.ErrContextTooLong
	ErrContentFiltered     = types.ErrContentFiltered
	ErrUpstreamError       = types.ErrUpstreamError
	ErrUpstreamTimeout     = types.ErrUpstreamTimeout
	ErrTimeout             = types.ErrTimeout
	ErrInternalError       = types.ErrInternalError
	ErrServiceUnavailable  = types.ErrServiceUnavailable
	ErrProviderUnavailable = types.ErrProviderUnavailable
)

// Provider is the narrow interface every concrete LLM back-end implements.
// Concrete providers wrap external HTTP APIs; they differ only by endpoint
// shape, authentication, and model name. The Manager owns configuration, not
// the providers.
type Provider interface {
	// Completion sends a synchronous chat request.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Available reports whether the provider is currently usable. The
	// concrete SDK-backed implementations make a small live probe call each
	// time; Manager caches the result for ManagerConfig.HealthCacheTTL.
	Available(ctx context.Context) bool

	// Name returns the provider's unique identifier.
	Name() string
}

// ChatRequest represents a chat completion request. It mirrors the
// OpenAI-compatible chat-completions shape of spec §6: {model, messages,
// temperature, max_tokens}, plus a PreferredProvider hint the Manager
// consults before falling through its configured order.
type ChatRequest struct {
	TraceID           string            `json:"trace_id,omitempty"`
	Model             string            `json:"model"`
	Messages          []Message         `json:"messages"`
	MaxTokens         int               `json:"max_tokens,omitempty"`
	Temperature       float32           `json:"temperature,omitempty"`
	TopP              float32           `json:"top_p,omitempty"`
	Stop              []string          `json:"stop,omitempty"`
	Timeout           time.Duration     `json:"timeout,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	PreferredProvider string            `json:"preferred_provider,omitempty"`
}

// ChatResponse represents a chat completion response.
type ChatResponse struct {
	ID        string       `json:"id,omitempty"`
	Provider  string       `json:"provider,omitempty"`
	Model     string       `json:"model"`
	Choices   []ChatChoice `json:"choices"`
	Usage     ChatUsage    `json:"usage"`
	CreatedAt time.Time    `json:"created_at"`
}

// Text returns the first choice's message content, the shape most callers
// in this module need (spec's "Complete(messages, options) → text").
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ChatChoice represents a single choice in the response.
type ChatChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason,omitempty"`
	Message      Message `json:"message"`
}

// ChatUsage represents token usage in a response.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}
