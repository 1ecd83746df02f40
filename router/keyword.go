package router

import (
	"context"
	"regexp"
	"strings"

	"github.com/BaSui01/agentflow/types"
)

// domainLexicon is one entry in the priority-ordered domain lexicon list.
// Listed in the precedence order the spec requires: weather, finance,
// routing, rag-document.
type domainLexicon struct {
	task     types.TaskKind
	keywords []string
}

var domainLexicons = []domainLexicon{
	{
		task: types.TaskDomainWeather,
		keywords: []string{
			"weather", "forecast", "temperature", "rain", "snow", "humidity", "wind speed",
			"天气", "气温", "预报", "下雨", "下雪", "湿度",
			"天氣", "氣溫", "預報", "濕度",
		},
	},
	{
		task: types.TaskDomainFinance,
		keywords: []string{
			"stock price", "stock", "ticker", "share price", "market cap", "nasdaq", "nyse",
			"股价", "股票", "行情", "市值",
		},
	},
	{
		task: types.TaskDomainRouting,
		keywords: []string{
			"directions", "route from", "how to get to", "drive from", "distance from",
			"路线", "怎么走", "导航", "从.*到",
		},
	},
	{
		task: types.TaskRAG,
		keywords: []string{
			"according to the document", "in the attached file", "in this pdf", "search the knowledge base",
			"根据文档", "在这份文件中", "知识库",
		},
	},
}

var codeKeywords = []string{
	"write a function", "write code", "implement", "debug", "fix this bug", "regex for",
	"algorithm", "sort the array", "binary search", "compile", "stack trace",
	"写一个函数", "写代码", "调试", "算法",
}

// mathPattern matches arithmetic operators, common function names, pi,
// decimal literals, or exponentiation notation.
var mathPattern = regexp.MustCompile(`(?i)[-+*/^=]|\b(sin|cos|tan|sqrt|log|ln|exp)\s*\(|π|\d+\.\d+|\d+\s*\*\*\s*\d+|\d+\^\d+`)

// unitConversionPattern matches "N unit1 in/to unit2" in English and the
// Chinese "N 单位1 换算成 单位2" / "N 单位1 等于多少 单位2" shapes.
var unitConversionPattern = regexp.MustCompile(`(?i)\d+(\.\d+)?\s*[a-zA-Z]+\s*(in|to)\s*[a-zA-Z]+|\d+(\.\d+)?\s*[\p{Han}]+\s*(换算成|等于多少|转换为)\s*[\p{Han}]+`)

var calculationIndicators = []string{"how many", "how much", "calculate", "compute", "what is the result", "多少", "等于多少", "计算一下", "算一下"}

var researchKeywords = []string{
	"research", "investigate", "find out about", "compare", "latest news",
	"what happened", "summarize the news", "调查", "研究一下", "最新消息", "对比一下",
}

// realTimeWords signal the query wants current/live data, used to boost a
// domain match and to downgrade a numeric-looking query away from Code.
var realTimeWords = []string{"now", "current", "currently", "live", "现在", "实时", "目前", "現在", "現時"}

func containsAny(lowerText string, terms []string) (string, bool) {
	for _, t := range terms {
		if strings.Contains(lowerText, strings.ToLower(t)) {
			return t, true
		}
	}
	return "", false
}

func hasQuestionMark(text string) bool {
	return strings.ContainsRune(text, '?') || strings.ContainsRune(text, '？')
}

// KeywordRouter is the deterministic, non-suspending router. It is
// pure-function aside from language detection and never fails — its
// result is always usable as a fallback for the other routers.
type KeywordRouter struct{}

// NewKeywordRouter builds the keyword router. It carries no state.
func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{}
}

// Route classifies query deterministically. It never returns an error.
func (r *KeywordRouter) Route(ctx context.Context, query string, _ map[string]any) (*types.RoutingDecision, error) {
	lower := strings.ToLower(query)
	confidence := 0.5
	var reasons []string

	isRealTime := false
	if _, ok := containsAny(lower, realTimeWords); ok {
		isRealTime = true
	}

	// Domain precedence: first lexicon (in listed priority order) that
	// matches wins outright.
	for _, lex := range domainLexicons {
		if kw, ok := containsAny(lower, lex.keywords); ok {
			confidence += 0.25
			reasons = append(reasons, "matched domain keyword \""+kw+"\"")
			if isRealTime {
				confidence += 0.1
				reasons = append(reasons, "real-time phrasing boosts domain confidence")
			}
			return decision(query, lex.task, clampConfidence(confidence), joinReasons(reasons)), nil
		}
	}

	// Code precedence: keyword, math pattern, or unit conversion.
	codeConfidence := confidence
	var codeReasons []string
	matchedCode := false

	if kw, ok := containsAny(lower, codeKeywords); ok {
		matchedCode = true
		codeConfidence += 0.25
		codeReasons = append(codeReasons, "matched code keyword \""+kw+"\"")
	}
	if mathPattern.MatchString(query) {
		matchedCode = true
		codeConfidence += 0.15
		codeReasons = append(codeReasons, "matched a math pattern")
	}
	if unitConversionPattern.MatchString(query) {
		matchedCode = true
		codeConfidence += 0.20
		codeReasons = append(codeReasons, "matched a unit-conversion pattern")
	}
	if kw, ok := containsAny(lower, calculationIndicators); ok {
		codeConfidence += 0.20
		codeReasons = append(codeReasons, "matched calculation indicator \""+kw+"\"")
	}

	if matchedCode {
		if isRealTime {
			// A numeric-sounding query asking for live data is answered
			// by a Research lookup, not a local calculation.
			return decision(query, types.TaskResearch, clampConfidence(0.5+0.25),
				"real-time phrasing on a numeric-looking query forces research over code"), nil
		}
		return decision(query, types.TaskCode, clampConfidence(codeConfidence), joinReasons(codeReasons)), nil
	}

	// Research precedence: verbs/nouns or a terminal question mark.
	if kw, ok := containsAny(lower, researchKeywords); ok {
		confidence += 0.25
		reasons = append(reasons, "matched research keyword \""+kw+"\"")
		return decision(query, types.TaskResearch, clampConfidence(confidence), joinReasons(reasons)), nil
	}
	if hasQuestionMark(query) {
		confidence += 0.10
		reasons = append(reasons, "terminal question mark")
		return decision(query, types.TaskResearch, clampConfidence(confidence), joinReasons(reasons)), nil
	}

	// Default: Chat.
	return decision(query, types.TaskChat, clampConfidence(confidence), "no domain, code, or research signal matched; defaulting to chat"), nil
}

func clampConfidence(c float64) float64 {
	if c > 1.0 {
		return 1.0
	}
	if c < 0 {
		return 0
	}
	return c
}

// joinReasons joins individual match reasons into one sentence.
func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "keyword router default"
	}
	return strings.Join(reasons, "; ")
}

func decision(query string, task types.TaskKind, confidence float64, reason string) *types.RoutingDecision {
	return &types.RoutingDecision{
		Query:       query,
		PrimaryTask: task,
		Confidence:  confidence,
		Reasoning:   reason,
		Method:      types.MethodKeyword,
	}
}
