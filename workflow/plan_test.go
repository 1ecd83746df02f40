package workflow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/agentflow/types"
)

func node(id string, deps ...string) types.TaskNode {
	return types.TaskNode{ID: id, Kind: types.TaskChat, InputTemplate: "x", DependsOn: deps}
}

func TestValidatePlan_AcceptsWellFormedDAG(t *testing.T) {
	plan := &types.WorkflowPlan{Query: "q", Nodes: []types.TaskNode{
		node("a"),
		node("b", "a"),
		node("c", "a", "b"),
	}}
	assert.NoError(t, ValidatePlan(plan))
}

func TestValidatePlan_RejectsNilPlan(t *testing.T) {
	assert.Error(t, ValidatePlan(nil))
}

func TestValidatePlan_RejectsEmptyPlan(t *testing.T) {
	assert.Error(t, ValidatePlan(&types.WorkflowPlan{Query: "q"}))
}

func TestValidatePlan_RejectsTooManyNodes(t *testing.T) {
	nodes := make([]types.TaskNode, MaxPlanNodes+1)
	for i := range nodes {
		nodes[i] = node(fmt.Sprintf("n%d", i))
	}
	assert.Error(t, ValidatePlan(&types.WorkflowPlan{Query: "q", Nodes: nodes}))
}

func TestValidatePlan_RejectsDuplicateID(t *testing.T) {
	plan := &types.WorkflowPlan{Query: "q", Nodes: []types.TaskNode{node("a"), node("a")}}
	assert.Error(t, ValidatePlan(plan))
}

func TestValidatePlan_RejectsUnknownDependency(t *testing.T) {
	plan := &types.WorkflowPlan{Query: "q", Nodes: []types.TaskNode{node("a", "missing")}}
	assert.Error(t, ValidatePlan(plan))
}

func TestValidatePlan_RejectsSelfDependency(t *testing.T) {
	plan := &types.WorkflowPlan{Query: "q", Nodes: []types.TaskNode{node("a", "a")}}
	assert.Error(t, ValidatePlan(plan))
}

func TestValidatePlan_RejectsCycle(t *testing.T) {
	plan := &types.WorkflowPlan{Query: "q", Nodes: []types.TaskNode{node("a", "b"), node("b", "a")}}
	assert.Error(t, ValidatePlan(plan))
}

func TestValidatePlan_RejectsNonDispatchableKind(t *testing.T) {
	n := node("a")
	n.Kind = types.TaskWorkflow
	plan := &types.WorkflowPlan{Query: "q", Nodes: []types.TaskNode{n}}
	assert.Error(t, ValidatePlan(plan))
}
