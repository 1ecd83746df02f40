package research

import (
	"context"
	"encoding/json"
	"strings"
)

// Completer is the narrow LLM completion seam this package depends on,
// isolating the one required llm import to llm_completer.go.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

const planSystemPrompt = `You are a research planning assistant. Given a user's question, break it
down into 3 to 5 focused web-search subqueries that together would surface the information needed
to answer it. Respond with a JSON array of strings only, no prose, no markdown fences. Example:
["subquery one", "subquery two", "subquery three"]`

// Planner turns a user query into a small set of search subqueries.
type Planner struct {
	completer Completer
	model     string
}

// NewPlanner builds a Planner. model may be empty to use the completer's default.
func NewPlanner(completer Completer, model string) *Planner {
	return &Planner{completer: completer, model: model}
}

// Plan returns 3-5 subqueries for query. On any completion error, or on a
// response that doesn't parse as a non-empty JSON string array, it falls
// back to the single-element plan []string{query} rather than failing the
// whole research pipeline over a planning hiccup.
func (p *Planner) Plan(ctx context.Context, query string) []string {
	raw, err := p.completer.Complete(ctx, planSystemPrompt, query, 0.3)
	if err != nil {
		return []string{query}
	}

	var subqueries []string
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &subqueries); err != nil {
		return []string{query}
	}

	cleaned := make([]string, 0, len(subqueries))
	for _, q := range subqueries {
		q = strings.TrimSpace(q)
		if q != "" {
			cleaned = append(cleaned, q)
		}
	}
	if len(cleaned) == 0 {
		return []string{query}
	}
	return cleaned
}

// extractJSONArray trims surrounding prose down to the first balanced
// "[...]" span, tolerating models that ignore the JSON-only instruction.
func extractJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
