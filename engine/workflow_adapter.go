package engine

import (
	"context"
	"fmt"

	"github.com/BaSui01/agentflow/strategy"
	"github.com/BaSui01/agentflow/types"
	"github.com/BaSui01/agentflow/workflow"
)

// dispatcherNodeExecutor adapts a strategy.Dispatcher to
// workflow.NodeExecutor, the Workflow Engine's only seam into the rest of
// the strategies. It builds a single-intent RoutingDecision for the
// node's Kind and dispatches through the same table every top-level query
// does — a workflow node is just a query whose PrimaryTask is already
// decided.
type dispatcherNodeExecutor struct {
	dispatcher *strategy.Dispatcher
}

func (x dispatcherNodeExecutor) Execute(ctx context.Context, kind types.TaskKind, input string) (any, error) {
	decision := &types.RoutingDecision{
		Query:       input,
		PrimaryTask: kind,
		Reasoning:   "workflow node: task kind fixed by the decomposed plan, not routed",
	}
	return x.dispatcher.Dispatch(ctx, decision, input, nil)
}

// NewWorkflowHandler builds the strategy.Handler to register with
// Dispatcher.RegisterWorkflow: it decomposes query into a WorkflowPlan
// (when decomposer is non-nil), then runs that plan to completion and
// returns its WorkflowRunResult. A nil decomposer means multi-intent
// queries are rejected rather than silently ignored, since there is no
// other source of a plan.
func NewWorkflowHandler(decomposer *workflow.Decomposer, executor *workflow.Executor) strategy.Handler {
	return func(ctx context.Context, query string, _ map[string]any) (any, error) {
		if decomposer == nil {
			return nil, fmt.Errorf("engine: multi-intent query received but no decomposer is configured")
		}
		plan, err := decomposer.Decompose(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("engine: workflow decomposition failed: %w", err)
		}
		result, events, err := executor.Run(ctx, plan)
		if events != nil {
			// Nothing observes node-level events at this seam; drain so
			// the executor's non-blocking emit never has a full buffer
			// working against it for nothing.
			go func() {
				for range events {
				}
			}()
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// NewNodeExecutor adapts d into a workflow.NodeExecutor, for wiring a
// workflow.Executor that dispatches its nodes through the same strategy
// table the top-level Engine uses.
func NewNodeExecutor(d *strategy.Dispatcher) workflow.NodeExecutor {
	return dispatcherNodeExecutor{dispatcher: d}
}
