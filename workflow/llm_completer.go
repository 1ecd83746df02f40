package workflow

import (
	"context"

	"github.com/BaSui01/agentflow/llm"
	"github.com/BaSui01/agentflow/types"
)

// Completer is the narrow seam the decomposer and aggregator need from an
// LLM provider, isolating the llm package import to this one file like
// every other strategy package.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

// ManagerCompleter adapts an llm.Manager to this package's narrow
// Completer interface, following the same one-seam pattern as
// rag.ManagerCompleter, research.ManagerCompleter, and router.ManagerCompleter.
type ManagerCompleter struct {
	Manager *llm.Manager
	Model   string
}

// Complete implements Completer.
func (c ManagerCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	resp, err := c.Manager.Complete(ctx, &llm.ChatRequest{
		Model: c.Model,
		Messages: []types.Message{
			types.NewSystemMessage(systemPrompt),
			types.NewUserMessage(userPrompt),
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
