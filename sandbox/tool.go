package sandbox

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Tool wraps a SandboxExecutor as a duck-typed tool object: callers depend
// on this narrow Execute(ctx, json) shape rather than the executor and its
// backend directly.
type Tool struct {
	executor *SandboxExecutor
	logger   *zap.Logger
}

// NewTool creates a sandbox tool.
func NewTool(executor *SandboxExecutor, logger *zap.Logger) *Tool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tool{executor: executor, logger: logger}
}

// Execute decodes args as an ExecutionRequest, runs it, and encodes the
// result. Errors returned here are tool-invocation errors (bad arguments,
// backend outage) — a rejected or failed program is still a successful
// tool call carrying ExecutionResult.Success=false.
func (t *Tool) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var req ExecutionRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	result, err := t.executor.Execute(ctx, &req)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}
