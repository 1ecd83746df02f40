package strategy

import (
	"context"

	"github.com/BaSui01/agentflow/chat"
	"github.com/BaSui01/agentflow/code"
	"github.com/BaSui01/agentflow/domain"
	"github.com/BaSui01/agentflow/rag"
	"github.com/BaSui01/agentflow/research"
)

// NewResearchHandler adapts a research.Pipeline to Handler.
func NewResearchHandler(p *research.Pipeline) Handler {
	return func(ctx context.Context, query string, _ map[string]any) (any, error) {
		return p.Research(ctx, query)
	}
}

// NewCodeHandler adapts a code.Pipeline to Handler. query is treated as
// the problem description.
func NewCodeHandler(p *code.Pipeline) Handler {
	return func(ctx context.Context, query string, _ map[string]any) (any, error) {
		return p.Solve(ctx, query)
	}
}

// NewDomainHandler adapts a domain.Strategy (Weather, Finance, or
// Routing) to Handler.
func NewDomainHandler(s *domain.Strategy) Handler {
	return func(ctx context.Context, query string, _ map[string]any) (any, error) {
		return s.Handle(ctx, query), nil
	}
}

// NewRAGHandler adapts a rag.Pipeline to Handler. context may carry a
// "collection" string (falling back to defaultCollection) and a "filter"
// map[string]any.
func NewRAGHandler(p *rag.Pipeline, defaultCollection string) Handler {
	return func(ctx context.Context, query string, context map[string]any) (any, error) {
		collection := defaultCollection
		if v, ok := context["collection"].(string); ok && v != "" {
			collection = v
		}
		filter, _ := context["filter"].(map[string]any)
		return p.Run(ctx, collection, query, filter)
	}
}

// NewChatHandler adapts a chat.Pipeline to Handler. context must carry a
// "conversation_id" string identifying the caller's conversation; queries
// without one fall back to a single shared "default" conversation.
func NewChatHandler(p *chat.Pipeline) Handler {
	return func(ctx context.Context, query string, context map[string]any) (any, error) {
		conversationID, _ := context["conversation_id"].(string)
		if conversationID == "" {
			conversationID = "default"
		}
		return p.Handle(ctx, conversationID, query)
	}
}
