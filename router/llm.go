package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/agentflow/types"
)

// Completer is the narrow slice of llm.Manager the LLM router needs,
// kept as an interface so this package doesn't import llm directly and
// so tests can supply a stub.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

// llmDecision mirrors RoutingDecision minus Method — the field the model
// is never asked to set, since Method always reflects which router path
// actually produced the decision.
type llmDecision struct {
	PrimaryTask         types.TaskKind               `json:"primary_task"`
	Confidence          float64                      `json:"confidence"`
	Reasoning           string                       `json:"reasoning"`
	ToolsNeeded         []types.ToolRecommendation   `json:"tools_needed,omitempty"`
	MultiIntent         bool                         `json:"multi_intent"`
	FollowUpQuestions   []string                     `json:"follow_up_questions,omitempty"`
	EstimatedDurationMs int                          `json:"estimated_duration_ms,omitempty"`
}

const taskKindCatalog = `- research: open-ended information gathering requiring web search and synthesis
- code: generating and running a program to compute, transform, or demonstrate something
- chat: a conversational reply needing no tool
- rag: a question answerable from a private document collection
- domain_weather: a weather/forecast lookup for a location
- domain_finance: a stock/ticker price or market-data lookup
- domain_routing: directions or distance between two places
- workflow: a multi-step task best decomposed into a plan of sub-tasks`

const confidenceRubric = `Score confidence as: HIGH (>= 0.85) when intent is explicit and unambiguous, MEDIUM (0.65-0.85) when there are plausible alternative categories, LOW (< 0.65) when the query is genuinely ambiguous.`

var fewShotByLanguage = map[Language]string{
	LangZH: `示例:
查询: "今天北京天气怎么样" -> {"primary_task":"domain_weather","confidence":0.95,"reasoning":"明确的天气查询"}
查询: "帮我写一个快速排序的代码" -> {"primary_task":"code","confidence":0.9,"reasoning":"明确要求生成代码"}`,
	LangEN: `Examples:
Query: "what's the weather in Tokyo" -> {"primary_task":"domain_weather","confidence":0.95,"reasoning":"explicit weather query"}
Query: "write a function to reverse a string" -> {"primary_task":"code","confidence":0.9,"reasoning":"explicit code generation request"}`,
	LangOther: `Examples:
Query: "what's the weather in Tokyo" -> {"primary_task":"domain_weather","confidence":0.95,"reasoning":"explicit weather query"}`,
}

// LLMRouter classifies a query with a structured-output LLM call. Per the
// spec it is never the first-line path in production — Hybrid always
// tries the keyword router first. It is never responsible for raising a
// request-level error: a malformed response falls back to its own
// keyword router instance; a transport-level failure is returned as an
// error for the caller (Hybrid) to convert into keyword_fallback.
type LLMRouter struct {
	completer Completer
	fallback  *KeywordRouter
	model     string
}

// NewLLMRouter builds an LLM-backed router. model is passed through to
// the completer (empty string lets the completer pick its own default).
func NewLLMRouter(completer Completer, model string) *LLMRouter {
	return &LLMRouter{completer: completer, fallback: NewKeywordRouter(), model: model}
}

// Route builds a structured classification prompt and parses the model's
// JSON response into a RoutingDecision. A transport/timeout failure is
// returned as an error. A response that fails to parse as JSON is not an
// error: the keyword router's result is returned instead, per spec.
func (r *LLMRouter) Route(ctx context.Context, query string, context_ map[string]any) (*types.RoutingDecision, error) {
	lang := DetectLanguage(query)
	fewShot := fewShotByLanguage[lang]

	system := fmt.Sprintf(
		"You classify a user query into exactly one task kind. Task kinds:\n%s\n\n%s\n\n%s\n\nRespond with a single JSON object matching this shape: "+
			`{"primary_task":"...","confidence":0.0,"reasoning":"...","multi_intent":false}`+
			". No prose outside the JSON object.",
		taskKindCatalog, confidenceRubric, fewShot,
	)

	raw, err := r.completer.Complete(ctx, system, query, 0.25)
	if err != nil {
		return nil, fmt.Errorf("llm router completion: %w", err)
	}

	var parsed llmDecision
	if jsonErr := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); jsonErr != nil {
		return r.fallback.Route(ctx, query, context_)
	}
	if parsed.PrimaryTask == "" {
		return r.fallback.Route(ctx, query, context_)
	}

	return &types.RoutingDecision{
		Query:               query,
		PrimaryTask:         parsed.PrimaryTask,
		Confidence:          clampConfidence(parsed.Confidence),
		Reasoning:           parsed.Reasoning,
		Method:              types.MethodLLM,
		ToolsNeeded:         parsed.ToolsNeeded,
		MultiIntent:         parsed.MultiIntent,
		FollowUpQuestions:   parsed.FollowUpQuestions,
		EstimatedDurationMs: parsed.EstimatedDurationMs,
	}, nil
}

// extractJSONObject trims any leading/trailing prose a model adds despite
// instructions, returning the first balanced {...} span.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
