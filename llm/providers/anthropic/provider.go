// Package anthropic wraps the real Anthropic SDK as an llm.Provider back-end.
package anthropic

import (
	"context"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/llm"
	"github.com/BaSui01/agentflow/types"
)

// Config configures the Anthropic-backed provider.
type Config struct {
	APIKey       string
	DefaultModel string
	MaxTokens    int // required by the Messages API when a request omits it
	Name         string
}

// Provider implements llm.Provider against the Anthropic Messages API.
type Provider struct {
	client       sdk.Client
	defaultModel string
	maxTokens    int
	name         string
	logger       *zap.Logger
}

// New creates an Anthropic-backed provider.
func New(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cfg.Name
	if name == "" {
		name = "anthropic"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Provider{
		client:       sdk.NewClient(option.WithAPIKey(cfg.APIKey)),
		defaultModel: cfg.DefaultModel,
		maxTokens:    maxTokens,
		name:         name,
		logger:       logger.With(zap.String("provider", name)),
	}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return p.name }

// Available implements llm.Provider. Anthropic has no dedicated health
// endpoint; a minimal one-token completion doubles as the probe.
func (p *Provider) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := p.client.Messages.New(probeCtx, sdk.MessageNewParams{
		Model:     sdk.Model(p.modelOrDefault("")),
		MaxTokens: 1,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock("ping"))},
	})
	if err != nil {
		p.logger.Debug("availability probe failed", zap.Error(err))
		return false
	}
	return true
}

func (p *Provider) modelOrDefault(model string) string {
	if model != "" {
		return model
	}
	return p.defaultModel
}

// Completion implements llm.Provider.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := p.modelOrDefault(req.Model)

	system, msgs := toAnthropicMessages(req.Messages)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(float64(req.Temperature))
	}
	if req.TopP > 0 {
		params.TopP = sdk.Float(float64(req.TopP))
	}
	if len(req.Stop) > 0 {
		params.StopSequences = req.Stop
	}

	if req.Timeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(ctx, req.Timeout)
		defer cancel()
		ctx = timeoutCtx
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, (&types.Error{
			Code:      types.ErrUpstreamError,
			Kind:      types.KindProviderUnavailable,
			Message:   "anthropic completion failed",
			Provider:  p.name,
			Retryable: true,
			Cause:     err,
		})
	}

	return fromAnthropicResponse(p.name, model, msg), nil
}

func toAnthropicMessages(msgs []types.Message) (system string, out []sdk.MessageParam) {
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case types.RoleAssistant:
			out = append(out, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}
	return system, out
}

func fromAnthropicResponse(provider, model string, msg *sdk.Message) *llm.ChatResponse {
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &llm.ChatResponse{
		ID:       msg.ID,
		Provider: provider,
		Model:    model,
		Choices: []llm.ChatChoice{{
			Index:        0,
			FinishReason: string(msg.StopReason),
			Message:      types.NewAssistantMessage(text),
		}},
		Usage: llm.ChatUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		CreatedAt: time.Now(),
	}
}
