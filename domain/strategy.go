package domain

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

// Formatter renders a provider payload (or an extraction/provider failure)
// into the short natural-language summary §4.7 requires.
type Formatter func(entity Entity, payload map[string]any) string

// Strategy is the shared Weather/Finance/Routing pipeline: extract entity,
// call primary then fallback provider, format. It never returns a Go
// error — every failure mode becomes a DomainResult whose
// FormattedSummary explains what happened, per §4.7's explicit
// "not an error" invariant.
type Strategy struct {
	kind      types.TaskKind
	extractor EntityExtractor
	primary   Provider
	fallback  Provider // optional; nil disables fallback
	formatter Formatter
	logger    *zap.Logger
}

// NewStrategy builds a domain Strategy. fallback may be nil.
func NewStrategy(kind types.TaskKind, extractor EntityExtractor, primary, fallback Provider, formatter Formatter, logger *zap.Logger) *Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{kind: kind, extractor: extractor, primary: primary, fallback: fallback, formatter: formatter, logger: logger}
}

// Handle runs the full pipeline for query.
func (s *Strategy) Handle(ctx context.Context, query string) *types.DomainResult {
	entity, ok := s.extractor.Extract(ctx, query)
	if !ok || entity.Empty() {
		return &types.DomainResult{
			Kind:             s.kind,
			FormattedSummary: "could not identify the information needed to answer this from the query",
		}
	}

	payload, providerErr := s.primary.Fetch(ctx, entity)
	if providerErr != nil {
		s.logger.Warn("primary domain provider failed", zap.String("provider", s.primary.Name()), zap.Error(providerErr))
		if s.fallback != nil {
			payload, providerErr = s.fallback.Fetch(ctx, entity)
		}
	}
	if providerErr != nil {
		return &types.DomainResult{
			Kind:             s.kind,
			Entity:           entitySummary(entity),
			FormattedSummary: "could not retrieve data for \"" + entitySummary(entity) + "\": " + providerErr.Error(),
		}
	}

	return &types.DomainResult{
		Kind:             s.kind,
		Entity:           entitySummary(entity),
		ProviderPayload:  payload,
		FormattedSummary: s.formatter(entity, payload),
	}
}

func entitySummary(e Entity) string {
	if e.Secondary == "" {
		return e.Primary
	}
	return e.Primary + " -> " + e.Secondary
}
