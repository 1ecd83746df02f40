package chat

import (
	"context"

	"github.com/BaSui01/agentflow/llm"
	"github.com/BaSui01/agentflow/types"
)

// Completer is the narrow LLM completion seam used across this module's
// strategy packages (rag/, router/, research/, code/, domain/).
type Completer interface {
	Complete(ctx context.Context, messages []types.Message, temperature float32) (string, error)
}

// ManagerCompleter adapts an llm.Manager to Completer. Unlike the other
// packages' ManagerCompleter, this one takes the full message slice
// directly rather than a single system+user pair, since chat needs the
// whole running history on every call.
type ManagerCompleter struct {
	Manager *llm.Manager
	Model   string
}

func (c ManagerCompleter) Complete(ctx context.Context, messages []types.Message, temperature float32) (string, error) {
	resp, err := c.Manager.Complete(ctx, &llm.ChatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
