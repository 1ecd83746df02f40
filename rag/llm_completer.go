package rag

import (
	"context"

	"github.com/BaSui01/agentflow/llm"
)

// ManagerCompleter adapts an llm.Manager to the pipeline's narrow Completer
// interface, so this package depends on llm.ChatRequest's shape only at
// this one seam instead of throughout pipeline.go.
type ManagerCompleter struct {
	Manager *llm.Manager
}

// Complete implements Completer.
func (c ManagerCompleter) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	resp, err := c.Manager.Complete(ctx, &llm.ChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
