package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/BaSui01/agentflow/types"
)

const aggregateSystemPrompt = `You write a single unified answer to the user's original request from the results of a workflow's subtasks.
Some subtasks may have failed or been skipped; note those as gaps in coverage rather than omitting them or failing to answer.
Respond with plain text, not JSON.`

// Aggregator consumes a completed run's records and produces a unified
// answer via an LLM call.
type Aggregator struct {
	completer Completer
	model     string
}

// NewAggregator builds an Aggregator.
func NewAggregator(completer Completer, model string) *Aggregator {
	return &Aggregator{completer: completer, model: model}
}

// Aggregate returns the LLM's unified answer. Executor.aggregate is the
// one that falls back to fallbackSummary on error; this method simply
// reports the error.
func (a *Aggregator) Aggregate(ctx context.Context, query string, records map[string]types.ExecutionRecord) (string, error) {
	return a.completer.Complete(ctx, aggregateSystemPrompt, buildAggregationPrompt(query, records), 0.3)
}

func buildAggregationPrompt(query string, records map[string]types.ExecutionRecord) string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "Original request: %s\n\nSubtask results:\n", query)
	for _, id := range ids {
		rec := records[id]
		switch rec.Status {
		case types.StatusSucceeded:
			fmt.Fprintf(&b, "- %s: succeeded -> %v\n", id, rec.Result)
		case types.StatusFailed:
			fmt.Fprintf(&b, "- %s: failed -> %s\n", id, rec.Error)
		case types.StatusSkipped:
			fmt.Fprintf(&b, "- %s: skipped (a dependency failed)\n", id)
		default:
			fmt.Fprintf(&b, "- %s: %s\n", id, rec.Status)
		}
	}
	return b.String()
}
