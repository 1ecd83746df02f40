package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSearchClient struct {
	byQuery map[string][]SearchResult
	fail    map[string]bool
}

func (f *fakeSearchClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if f.fail[query] {
		return nil, errors.New("search failed")
	}
	return f.byQuery[query], nil
}

func newTestPipeline(search SearchClient, extractor ContentExtractor, completer Completer) *Pipeline {
	return NewPipeline(search, extractor, completer, nil, "", DefaultConfig(), zap.NewNop())
}

func TestPipeline_HappyPath(t *testing.T) {
	search := &fakeSearchClient{byQuery: map[string][]SearchResult{
		"q": {{URL: "https://reuters.com/a", Title: "A", Snippet: "snippet a"}},
	}}
	extractor := &fakeExtractor{}
	completer := &fakeCompleter{response: "## Summary\nIt is so."}
	p := newTestPipeline(search, extractor, completer)
	p.planner = NewPlanner(&fakeCompleter{response: `["q"]`}, "")

	result, err := p.Research(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "q", result.Query)
	assert.Equal(t, []string{"q"}, result.Plan)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "https://reuters.com/a", result.Sources[0].URL)
	assert.Greater(t, result.Sources[0].CredibilityScore, 0.5)
	assert.Equal(t, "## Summary\nIt is so.", result.Summary)
}

func TestPipeline_ZeroSourcesStillReturnsExplanatorySummary(t *testing.T) {
	search := &fakeSearchClient{fail: map[string]bool{"q": true}}
	extractor := &fakeExtractor{}
	completer := &fakeCompleter{response: "unused"}
	p := newTestPipeline(search, extractor, completer)
	p.planner = NewPlanner(&fakeCompleter{response: `["q"]`}, "")

	result, err := p.Research(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
	assert.NotEmpty(t, result.Summary)
}

func TestPipeline_DedupsAcrossSubqueries(t *testing.T) {
	search := &fakeSearchClient{byQuery: map[string][]SearchResult{
		"q1": {{URL: "https://example.com/a"}},
		"q2": {{URL: "https://example.com/a?ref=2"}, {URL: "https://example.com/b"}},
	}}
	extractor := &fakeExtractor{}
	completer := &fakeCompleter{response: "summary"}
	p := newTestPipeline(search, extractor, completer)
	p.planner = NewPlanner(&fakeCompleter{response: `["q1", "q2"]`}, "")

	result, err := p.Research(context.Background(), "original")
	require.NoError(t, err)
	assert.Len(t, result.Sources, 2)
}

func TestPipeline_CredibilityOrdering(t *testing.T) {
	search := &fakeSearchClient{byQuery: map[string][]SearchResult{
		"q": {
			{URL: "https://forum.example.com/t/1", Title: "forum"},
			{URL: "https://cdc.gov/report", Title: "gov"},
		},
	}}
	extractor := &fakeExtractor{}
	completer := &fakeCompleter{response: "summary"}
	p := newTestPipeline(search, extractor, completer)
	p.planner = NewPlanner(&fakeCompleter{response: `["q"]`}, "")

	result, err := p.Research(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "https://cdc.gov/report", result.Sources[0].URL, "the more credible government source should rank first")
}
