package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// DefaultTemperature matches the teacher's conversational default.
const DefaultTemperature = 0.7

// Pipeline implements the Chat strategy: append the user message, complete
// against the (possibly truncated) running history, append the reply.
type Pipeline struct {
	history     *History
	completer   Completer
	temperature float32
	logger      *zap.Logger
}

// NewPipeline builds a chat Pipeline.
func NewPipeline(history *History, completer Completer, temperature float32, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	return &Pipeline{history: history, completer: completer, temperature: temperature, logger: logger}
}

// History returns the pipeline's backing History, so callers (and tests)
// can inspect a conversation without going through Handle.
func (p *Pipeline) History() *History {
	return p.history
}

// Handle appends userMessage to conversationID's history, completes, and
// appends the assistant's reply before returning it.
func (p *Pipeline) Handle(ctx context.Context, conversationID, userMessage string) (*types.ChatResult, error) {
	p.history.Append(conversationID, types.NewUserMessage(userMessage))

	reply, err := p.completer.Complete(ctx, p.history.Messages(conversationID), p.temperature)
	if err != nil {
		return nil, err
	}

	p.history.Append(conversationID, types.NewAssistantMessage(reply))
	return &types.ChatResult{Message: reply}, nil
}
