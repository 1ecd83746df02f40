package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// Router is the public contract every concrete router (and the Hybrid
// composition) implements: Route(query, context) -> RoutingDecision.
// KeywordRouter and Hybrid never return an error for valid text input;
// LLMRouter returns transport failures as errors, which Hybrid turns into
// a keyword_fallback decision.
type Router interface {
	Route(ctx context.Context, query string, context_ map[string]any) (*types.RoutingDecision, error)
}

// HybridConfig mirrors spec §6's router config block.
type HybridConfig struct {
	KeywordConfidenceThreshold float64
	CacheTTLSeconds            int
	CacheMaxEntries            int
}

// DefaultHybridConfig returns spec defaults: threshold 0.6, TTL 3600s,
// 1000 max cached entries.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		KeywordConfidenceThreshold: 0.6,
		CacheTTLSeconds:            3600,
		CacheMaxEntries:            1000,
	}
}

// Hybrid composes the keyword and LLM routers per §4.1's algorithm: run
// keyword first; if confident enough, return it; otherwise try the LLM
// router, falling back to the keyword result if it errors. Safe for
// concurrent use from many goroutines.
type Hybrid struct {
	keyword *KeywordRouter
	llm     Router
	cache   *DecisionCache
	cfg     HybridConfig
	logger  *zap.Logger
}

// NewHybrid builds the hybrid router. llmRouter and cache may be nil to
// run keyword-only (useful for tests and for deployments without an LLM
// router configured).
func NewHybrid(llmRouter Router, cache *DecisionCache, cfg HybridConfig, logger *zap.Logger) *Hybrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hybrid{
		keyword: NewKeywordRouter(),
		llm:     llmRouter,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

// Route implements Router.
func (h *Hybrid) Route(ctx context.Context, query string, context_ map[string]any) (*types.RoutingDecision, error) {
	lang := DetectLanguage(query)

	if h.cache != nil {
		if cached, ok := h.cache.Get(query, lang); ok {
			return cached, nil
		}
	}

	// Keyword router cannot fail.
	keywordResult, _ := h.keyword.Route(ctx, query, context_)

	var result *types.RoutingDecision
	if keywordResult.Confidence >= h.cfg.KeywordConfidenceThreshold || h.llm == nil {
		result = keywordResult
	} else {
		llmResult, err := h.llm.Route(ctx, query, context_)
		if err != nil {
			h.logger.Warn("llm router failed, falling back to keyword result",
				zap.String("query", query), zap.Error(err))
			keywordResult.Method = types.MethodKeywordFallback
			result = keywordResult
		} else {
			result = llmResult
		}
	}

	if h.cache != nil {
		h.cache.Set(query, lang, result)
	}
	return result, nil
}
