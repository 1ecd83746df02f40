package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/chat"
	"github.com/BaSui01/agentflow/domain"
	"github.com/BaSui01/agentflow/types"
)

type fakeAdapterCompleter struct{ response string }

func (f *fakeAdapterCompleter) Complete(ctx context.Context, messages []types.Message, temperature float32) (string, error) {
	return f.response, nil
}

func TestNewDomainHandler_NeverReturnsError(t *testing.T) {
	strat := domain.NewWeatherStrategy(domain.WeatherRegexExtractor{}, domain.NewOfflineWeatherProvider(), nil, zap.NewNop())
	h := NewDomainHandler(strat)

	got, err := h(context.Background(), "what's the weather in Oslo?", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskDomainWeather, got.(*types.DomainResult).Kind)
}

func TestNewChatHandler_DefaultsConversationID(t *testing.T) {
	p := chat.NewPipeline(chat.NewHistory(nil, 0), &fakeAdapterCompleter{response: "hi"}, 0, nil)
	h := NewChatHandler(p)

	got, err := h(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.(*types.ChatResult).Message)
}

func TestNewChatHandler_UsesProvidedConversationID(t *testing.T) {
	p := chat.NewPipeline(chat.NewHistory(nil, 0), &fakeAdapterCompleter{response: "hi"}, 0, nil)
	h := NewChatHandler(p)

	_, err := h(context.Background(), "hello", map[string]any{"conversation_id": "conv-42"})
	require.NoError(t, err)
	assert.Len(t, p.History().Messages("conv-42"), 2)
}
