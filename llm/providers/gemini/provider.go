// Package gemini wraps the real Google GenAI SDK as an llm.Provider back-end.
package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/llm"
	"github.com/BaSui01/agentflow/types"
)

// Config configures the Gemini-backed provider.
type Config struct {
	APIKey       string
	DefaultModel string
	Name         string
}

// Provider implements llm.Provider against the Gemini API.
type Provider struct {
	client       *genai.Client
	defaultModel string
	name         string
	logger       *zap.Logger
}

// New creates a Gemini-backed provider. Client construction can fail (the
// SDK validates the API key shape), so New returns an error.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cfg.Name
	if name == "" {
		name = "gemini"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, (&types.Error{
			Code:    types.ErrInternalError,
			Kind:    types.KindInternal,
			Message: "failed to create genai client",
			Cause:   err,
		})
	}

	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Provider{
		client:       client,
		defaultModel: model,
		name:         name,
		logger:       logger.With(zap.String("provider", name)),
	}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return p.name }

// Available implements llm.Provider with a minimal single-token generation.
func (p *Provider) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := p.client.Models.GenerateContent(probeCtx, p.defaultModel,
		[]*genai.Content{genai.NewContentFromText("ping", genai.RoleUser)},
		&genai.GenerateContentConfig{MaxOutputTokens: 1},
	)
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

	contents, system := toGenAIContents(req.Messages)

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		t := req.Temperature
		cfg.Temperature = &t
	}
	if req.TopP > 0 {
		tp := req.TopP
		cfg.TopP = &tp
	}
	if len(req.Stop) > 0 {
		cfg.StopSequences = req.Stop
	}

	if req.Timeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(ctx, req.Timeout)
		defer cancel()
		ctx = timeoutCtx
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, (&types.Error{
			Code:      types.ErrUpstreamError,
			Kind:      types.KindProviderUnavailable,
			Message:   "gemini completion failed",
			Provider:  p.name,
			Retryable: true,
			Cause:     err,
		})
	}

	return fromGenAIResponse(p.name, model, resp), nil
}

func toGenAIContents(msgs []types.Message) (contents []*genai.Content, system string) {
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case types.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, system
}

func fromGenAIResponse(provider, model string, resp *genai.GenerateContentResponse) *llm.ChatResponse {
	text := resp.Text()

	usage := llm.ChatUsage{}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	finishReason := ""
	if len(resp.Candidates) > 0 {
		finishReason = string(resp.Candidates[0].FinishReason)
	}

	return &llm.ChatResponse{
		Provider: provider,
		Model:    model,
		Choices: []llm.ChatChoice{{
			Index:        0,
			FinishReason: finishReason,
			Message:      types.NewAssistantMessage(text),
		}},
		Usage:     usage,
		CreatedAt: time.Now(),
	}
}
