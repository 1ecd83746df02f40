package workflow

import (
	"fmt"

	"github.com/BaSui01/agentflow/types"
)

// MaxPlanNodes bounds a decomposed plan's size, whether fed directly or
// derived by the decomposer. A query that genuinely needs more than this
// many subtasks should be split by the caller, not accepted here.
const MaxPlanNodes = 25

// dispatchableKinds is every TaskKind a TaskNode may carry. TaskWorkflow
// is deliberately excluded: a node that recursed into another workflow
// would make the DAG's acyclicity check meaningless, since the nested
// plan's shape isn't known until it too is decomposed.
var dispatchableKinds = map[types.TaskKind]bool{
	types.TaskResearch:      true,
	types.TaskCode:          true,
	types.TaskChat:          true,
	types.TaskRAG:           true,
	types.TaskDomainWeather: true,
	types.TaskDomainFinance: true,
	types.TaskDomainRouting: true,
}

// ValidatePlan checks that plan is a well-formed, acyclic, boundedly sized
// DAG of dispatchable nodes: the same invariants WorkflowPlan's own doc
// comment names. It is used both before executing a caller-supplied plan
// and after the decomposer derives one.
func ValidatePlan(plan *types.WorkflowPlan) error {
	if plan == nil {
		return fmt.Errorf("workflow: plan is nil")
	}
	if len(plan.Nodes) == 0 {
		return fmt.Errorf("workflow: plan has no nodes")
	}
	if len(plan.Nodes) > MaxPlanNodes {
		return fmt.Errorf("workflow: plan has %d nodes, exceeds max of %d", len(plan.Nodes), MaxPlanNodes)
	}

	seen := make(map[string]bool, len(plan.Nodes))
	for _, n := range plan.Nodes {
		if n.ID == "" {
			return fmt.Errorf("workflow: node has empty id")
		}
		if seen[n.ID] {
			return fmt.Errorf("workflow: duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if !dispatchableKinds[n.Kind] {
			return fmt.Errorf("workflow: node %q has non-dispatchable kind %q", n.ID, n.Kind)
		}
	}
	for _, n := range plan.Nodes {
		for _, dep := range n.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("workflow: node %q depends on unknown node %q", n.ID, dep)
			}
			if dep == n.ID {
				return fmt.Errorf("workflow: node %q depends on itself", n.ID)
			}
		}
	}

	return checkAcyclic(plan.Nodes)
}

// checkAcyclic runs iterative DFS cycle detection over the DependsOn edges.
func checkAcyclic(nodes []types.TaskNode) error {
	deps := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		deps[n.ID] = n.DependsOn
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(nodes))

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		for _, dep := range deps[id] {
			switch color[dep] {
			case gray:
				return fmt.Errorf("workflow: dependency cycle detected at node %q", dep)
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, n := range nodes {
		if color[n.ID] == white {
			if err := visit(n.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
