package domain

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/BaSui01/agentflow/types"
)

// Completer is the narrow LLM completion seam, matching the pattern
// already used in rag/, router/, research/, and code/.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

const weatherExtractPrompt = `Extract the location the user is asking about the weather for. Respond with
a JSON object {"primary": "<location>"} only, or {"primary": ""} if no location is present.`
const financeExtractPrompt = `Extract the stock ticker symbol the user is asking about. Respond with a
JSON object {"primary": "<TICKER>"} only, or {"primary": ""} if no ticker is present.`
const routingExtractPrompt = `Extract the origin and destination the user wants directions between.
Respond with a JSON object {"primary": "<origin>", "secondary": "<destination>"} only, or
{"primary": "", "secondary": ""} if either is missing.`

// LLMEntityExtractor extracts an Entity via a structured-output LLM call
// instead of the default regex/heuristic extractor, per §4.7's "by regex +
// heuristic, or by a dedicated LLM call if configured" clause.
type LLMEntityExtractor struct {
	completer Completer
	kind      types.TaskKind
	model     string
}

// NewLLMEntityExtractor builds an LLMEntityExtractor for one of
// TaskDomainWeather, TaskDomainFinance, or TaskDomainRouting.
func NewLLMEntityExtractor(completer Completer, kind types.TaskKind, model string) *LLMEntityExtractor {
	return &LLMEntityExtractor{completer: completer, kind: kind, model: model}
}

func (x *LLMEntityExtractor) Extract(ctx context.Context, query string) (Entity, bool) {
	systemPrompt := x.systemPrompt()
	if systemPrompt == "" {
		return Entity{}, false
	}

	raw, err := x.completer.Complete(ctx, systemPrompt, query, 0.0)
	if err != nil {
		return Entity{}, false
	}

	var parsed struct {
		Primary   string `json:"primary"`
		Secondary string `json:"secondary"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
		return Entity{}, false
	}

	e := Entity{Primary: strings.TrimSpace(parsed.Primary), Secondary: strings.TrimSpace(parsed.Secondary)}
	return e, !e.Empty()
}

func (x *LLMEntityExtractor) systemPrompt() string {
	switch x.kind {
	case types.TaskDomainWeather:
		return weatherExtractPrompt
	case types.TaskDomainFinance:
		return financeExtractPrompt
	case types.TaskDomainRouting:
		return routingExtractPrompt
	default:
		return ""
	}
}

// extractJSONObject trims surrounding prose to the first balanced "{...}"
// span, the same tolerance router.LLMRouter applies to its own
// structured-output responses.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
