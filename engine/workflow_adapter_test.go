package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentflow/strategy"
	"github.com/BaSui01/agentflow/types"
	"github.com/BaSui01/agentflow/workflow"
)

func TestNodeExecutor_DispatchesByKind(t *testing.T) {
	d := strategy.NewDispatcher(nil)
	d.Register(types.TaskChat, handlerReturning(&types.ChatResult{Message: "node done"}, nil))
	exec := NewNodeExecutor(d)

	got, err := exec.Execute(context.Background(), types.TaskChat, "do the thing")
	require.NoError(t, err)
	assert.Equal(t, "node done", got.(*types.ChatResult).Message)
}

func TestNodeExecutor_UnregisteredKindErrors(t *testing.T) {
	d := strategy.NewDispatcher(nil)
	exec := NewNodeExecutor(d)

	_, err := exec.Execute(context.Background(), types.TaskRAG, "do the thing")
	assert.Error(t, err)
}

func TestWorkflowHandler_NoDecomposerErrors(t *testing.T) {
	d := strategy.NewDispatcher(nil)
	executor := workflow.NewExecutor(NewNodeExecutor(d), nil, workflow.DefaultConfig(), nil)
	h := NewWorkflowHandler(nil, executor)

	_, err := h(context.Background(), "do several things", nil)
	assert.Error(t, err)
}

func TestWorkflowHandler_RunsDecomposedPlan(t *testing.T) {
	d := strategy.NewDispatcher(nil)
	d.Register(types.TaskChat, handlerReturning(&types.ChatResult{Message: "step done"}, nil))
	executor := workflow.NewExecutor(NewNodeExecutor(d), nil, workflow.DefaultConfig(), nil)
	decomposer := workflow.NewDecomposer(scriptedCompleter{
		response: `[{"id":"a","kind":"chat","input_template":"say hi","depends_on":[],"retry_budget":0,"timeout_ms":0}]`,
	}, "gpt-4o-mini")
	h := NewWorkflowHandler(decomposer, executor)

	got, err := h(context.Background(), "do one thing", nil)
	require.NoError(t, err)
	result, ok := got.(*types.WorkflowRunResult)
	require.True(t, ok)
	assert.Equal(t, types.StatusSucceeded, result.Records["a"].Status)
}

type scriptedCompleter struct {
	response string
	err      error
}

func (c scriptedCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	return c.response, c.err
}
