package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/agentflow/types"
)

const decomposeSystemPrompt = `You split a user's request into an ordered set of subtasks for a workflow engine to run.
Respond with ONLY a JSON array, no prose, where each element has this shape:
{"id": "short_snake_case_id", "kind": "research|code|chat|rag|domain_weather|domain_finance|domain_routing", "input_template": "the instruction for this subtask, may reference a dependency's output as {{other_id}}", "depends_on": ["other_id"], "retry_budget": 1, "timeout_ms": 30000}
Use the fewest subtasks that cover the request. depends_on may be empty. Never introduce a cycle.`

// Decomposer derives a WorkflowPlan from a natural-language query via an
// LLM call, then validates the result as an acyclic, boundedly sized DAG
// of dispatchable nodes before handing it back. Unlike the strategy
// pipelines, Decompose can fail: a bad decomposition has no partial
// execution to fall back to, so the caller decides what to do next (e.g.
// fall back to a direct Chat reply).
type Decomposer struct {
	completer Completer
	model     string
}

// NewDecomposer builds a Decomposer.
func NewDecomposer(completer Completer, model string) *Decomposer {
	return &Decomposer{completer: completer, model: model}
}

type nodeSpec struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"`
	InputTemplate string   `json:"input_template"`
	DependsOn     []string `json:"depends_on"`
	RetryBudget   int      `json:"retry_budget"`
	TimeoutMs     int      `json:"timeout_ms"`
}

// Decompose asks the LLM to split query into subtasks and validates the
// resulting plan.
func (d *Decomposer) Decompose(ctx context.Context, query string) (*types.WorkflowPlan, error) {
	raw, err := d.completer.Complete(ctx, decomposeSystemPrompt, query, 0.2)
	if err != nil {
		return nil, fmt.Errorf("workflow: decomposition request failed: %w", err)
	}

	var specs []nodeSpec
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &specs); err != nil {
		return nil, fmt.Errorf("workflow: decomposition response was not valid JSON: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("workflow: decomposition produced no subtasks")
	}

	nodes := make([]types.TaskNode, 0, len(specs))
	for _, s := range specs {
		nodes = append(nodes, types.TaskNode{
			ID:            strings.TrimSpace(s.ID),
			Kind:          types.TaskKind(strings.TrimSpace(s.Kind)),
			InputTemplate: s.InputTemplate,
			DependsOn:     s.DependsOn,
			RetryBudget:   s.RetryBudget,
			TimeoutMs:     s.TimeoutMs,
		})
	}

	plan := &types.WorkflowPlan{Query: query, Nodes: nodes}
	if err := ValidatePlan(plan); err != nil {
		return nil, fmt.Errorf("workflow: decomposed plan is invalid: %w", err)
	}
	return plan, nil
}

// extractJSONArray trims surrounding prose down to the first balanced
// "[...]" span, the same tolerance research.Planner applies to its own
// structured-output responses.
func extractJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
