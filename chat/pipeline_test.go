package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentflow/types"
)

type fakeChatCompleter struct {
	response string
	err      error
	lastMsgs []types.Message
}

func (f *fakeChatCompleter) Complete(ctx context.Context, messages []types.Message, temperature float32) (string, error) {
	f.lastMsgs = messages
	return f.response, f.err
}

func TestPipeline_AppendsUserAndAssistantMessages(t *testing.T) {
	completer := &fakeChatCompleter{response: "hi back"}
	p := NewPipeline(NewHistory(nil, 0), completer, 0, nil)

	result, err := p.Handle(context.Background(), "conv1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi back", result.Message)

	msgs := p.history.Messages("conv1")
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleUser, msgs[0].Role)
	assert.Equal(t, types.RoleAssistant, msgs[1].Role)
}

func TestPipeline_PassesFullHistoryOnSubsequentTurns(t *testing.T) {
	completer := &fakeChatCompleter{response: "reply"}
	p := NewPipeline(NewHistory(nil, 0), completer, 0, nil)

	_, err := p.Handle(context.Background(), "conv1", "first")
	require.NoError(t, err)
	_, err = p.Handle(context.Background(), "conv1", "second")
	require.NoError(t, err)

	require.Len(t, completer.lastMsgs, 3, "user+assistant from turn one, plus the new user message")
}

func TestPipeline_CompletionErrorDoesNotAppendAssistantMessage(t *testing.T) {
	completer := &fakeChatCompleter{err: errors.New("down")}
	p := NewPipeline(NewHistory(nil, 0), completer, 0, nil)

	_, err := p.Handle(context.Background(), "conv1", "hello")
	assert.Error(t, err)
	assert.Len(t, p.history.Messages("conv1"), 1, "only the user message should be recorded")
}
