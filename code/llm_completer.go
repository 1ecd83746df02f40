package code

import (
	"context"

	"github.com/BaSui01/agentflow/llm"
	"github.com/BaSui01/agentflow/types"
)

// Completer is the narrow LLM completion seam, isolating the one required
// llm import to this file, following the pattern already used in
// rag.ManagerCompleter, router.ManagerCompleter, and research.ManagerCompleter.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

// ManagerCompleter adapts an llm.Manager to Completer.
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
