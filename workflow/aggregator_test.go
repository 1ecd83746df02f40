package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentflow/types"
)

func TestAggregator_CallsCompleterWithRecordSummary(t *testing.T) {
	c := &scriptedWorkflowCompleter{response: "unified answer"}
	agg := NewAggregator(c, "gpt")

	records := map[string]types.ExecutionRecord{
		"a": {NodeID: "a", Status: types.StatusSucceeded, Result: "foo"},
		"b": {NodeID: "b", Status: types.StatusFailed, Error: "boom"},
	}
	answer, err := agg.Aggregate(context.Background(), "original query", records)
	require.NoError(t, err)
	assert.Equal(t, "unified answer", answer)
}

func TestAggregator_PropagatesCompleterError(t *testing.T) {
	c := &scriptedWorkflowCompleter{err: assertErr{}}
	agg := NewAggregator(c, "gpt")

	_, err := agg.Aggregate(context.Background(), "q", map[string]types.ExecutionRecord{})
	assert.Error(t, err)
}

func TestFallbackSummary_ReportsEachStatus(t *testing.T) {
	records := map[string]types.ExecutionRecord{
		"a": {NodeID: "a", Status: types.StatusSucceeded},
		"b": {NodeID: "b", Status: types.StatusFailed, Error: "boom"},
		"c": {NodeID: "c", Status: types.StatusSkipped},
	}
	summary := fallbackSummary(records)
	assert.Contains(t, summary, "1 succeeded")
	assert.Contains(t, summary, "1 failed")
	assert.Contains(t, summary, "1 skipped")
}
