package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentflow/types"
)

type fixedExtractor struct {
	entity Entity
	ok     bool
}

func (f fixedExtractor) Extract(ctx context.Context, query string) (Entity, bool) { return f.entity, f.ok }

type fakeProvider struct {
	name    string
	payload map[string]any
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Fetch(ctx context.Context, entity Entity) (map[string]any, error) {
	f.calls++
	return f.payload, f.err
}

func noopFormatter(entity Entity, payload map[string]any) string { return "ok" }

func TestStrategy_PrimarySucceedsSkipsFallback(t *testing.T) {
	primary := &fakeProvider{name: "primary", payload: map[string]any{"x": 1}}
	fallback := &fakeProvider{name: "fallback"}
	s := NewStrategy(types.TaskDomainFinance, fixedExtractor{entity: Entity{Primary: "AAPL"}, ok: true}, primary, fallback, noopFormatter, nil)

	result := s.Handle(context.Background(), "q")
	assert.Equal(t, 0, fallback.calls)
	assert.Equal(t, 1, primary.calls)
	require.NotNil(t, result.ProviderPayload)
}

func TestStrategy_PrimaryFailsUsesFallback(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	fallback := &fakeProvider{name: "fallback", payload: map[string]any{"x": 2}}
	s := NewStrategy(types.TaskDomainFinance, fixedExtractor{entity: Entity{Primary: "AAPL"}, ok: true}, primary, fallback, noopFormatter, nil)

	result := s.Handle(context.Background(), "q")
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, "ok", result.FormattedSummary)
}

func TestStrategy_BothProvidersFailYieldsExplanation(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	fallback := &fakeProvider{name: "fallback", err: errors.New("also down")}
	s := NewStrategy(types.TaskDomainFinance, fixedExtractor{entity: Entity{Primary: "AAPL"}, ok: true}, primary, fallback, noopFormatter, nil)

	result := s.Handle(context.Background(), "q")
	assert.Contains(t, result.FormattedSummary, "could not retrieve data")
}

func TestStrategy_NoFallbackConfiguredPropagatesPrimaryFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	s := NewStrategy(types.TaskDomainFinance, fixedExtractor{entity: Entity{Primary: "AAPL"}, ok: true}, primary, nil, noopFormatter, nil)

	result := s.Handle(context.Background(), "q")
	assert.Contains(t, result.FormattedSummary, "could not retrieve data")
}

func TestStrategy_MissingEntity(t *testing.T) {
	primary := &fakeProvider{name: "primary"}
	s := NewStrategy(types.TaskDomainFinance, fixedExtractor{ok: false}, primary, nil, noopFormatter, nil)

	result := s.Handle(context.Background(), "q")
	assert.Equal(t, 0, primary.calls)
	assert.Contains(t, result.FormattedSummary, "could not identify")
}
