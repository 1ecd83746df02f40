// Package openai wraps the real OpenAI SDK as an llm.Provider back-end.
package openai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/llm"
	"github.com/BaSui01/agentflow/types"
)

// Config configures the OpenAI-backed provider.
type Config struct {
	APIKey       string
	BaseURL      string // empty uses the SDK's default endpoint
	DefaultModel string
	Name         string // registry name, defaults to "openai"
}

// Provider implements llm.Provider against api.openai.com (or any
// OpenAI-compatible base URL) via the official SDK.
type Provider struct {
	client       openai.Client
	defaultModel string
	name         string
	logger       *zap.Logger

	lastHealthy bool
}

// New creates an OpenAI-backed provider.
func New(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cfg.Name
	if name == "" {
		name = "openai"
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client:       openai.NewClient(opts...),
		defaultModel: cfg.DefaultModel,
		name:         name,
		logger:       logger.With(zap.String("provider", name)),
		lastHealthy:  true,
	}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return p.name }

// Available implements llm.Provider with a cheap model-list round trip.
func (p *Provider) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := p.client.Models.List(probeCtx)
	if err != nil {
		p.logger.Debug("availability probe failed", zap.Error(err))
		return false
	}
	return true
}

// Completion implements llm.Provider.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(float64(req.TopP))
	}
	if len(req.Stop) > 0 {
		params.Stop.OfStringArray = req.Stop
	}

	callOpts := []option.RequestOption{}
	if req.Timeout > 0 {
		ctxTimeout, cancel := context.WithTimeout(ctx, req.Timeout)
		defer cancel()
		ctx = ctxTimeout
	}

	resp, err := p.client.Chat.Completions.New(ctx, params, callOpts...)
	if err != nil {
		return nil, (&types.Error{
			Code:      types.ErrUpstreamError,
			Kind:      types.KindProviderUnavailable,
			Message:   "openai completion failed",
			Provider:  p.name,
			Retryable: true,
			Cause:     err,
		})
	}

	return fromOpenAIResponse(p.name, resp), nil
}

func toOpenAIMessages(msgs []types.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case types.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		case types.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func fromOpenAIResponse(provider string, resp *openai.ChatCompletion) *llm.ChatResponse {
	choices := make([]llm.ChatChoice, 0, len(resp.Choices))
	for i, c := range resp.Choices {
		choices = append(choices, llm.ChatChoice{
			Index:        i,
			FinishReason: string(c.FinishReason),
			Message:      types.NewAssistantMessage(c.Message.Content),
		})
	}

	return &llm.ChatResponse{
		ID:       resp.ID,
		Provider: provider,
		Model:    resp.Model,
		Choices:  choices,
		Usage: llm.ChatUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		CreatedAt: time.Unix(resp.Created, 0),
	}
}
