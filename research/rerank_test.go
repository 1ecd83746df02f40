package research

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/llm/rerank"
)

type fakeRerankProvider struct {
	scores map[string]float64 // keyed by document ID
	err    error
}

func (f *fakeRerankProvider) Rerank(ctx context.Context, req *rerank.RerankRequest) (*rerank.RerankResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	results := make([]rerank.RerankResult, len(req.Documents))
	for i, d := range req.Documents {
		results[i] = rerank.RerankResult{Index: i, RelevanceScore: f.scores[d.ID]}
	}
	return &rerank.RerankResponse{Results: results}, nil
}

func (f *fakeRerankProvider) RerankSimple(ctx context.Context, query string, documents []string, topN int) ([]rerank.RerankResult, error) {
	return nil, nil
}

func (f *fakeRerankProvider) Name() string { return "fake" }

func pageFor(url string) scrapedPage {
	return scrapedPage{result: SearchResult{URL: url}, content: &ExtractedContent{Title: url, Text: "text"}}
}

func TestRerankSources_ReordersByScore(t *testing.T) {
	pages := []scrapedPage{pageFor("a"), pageFor("b")}
	provider := &fakeRerankProvider{scores: map[string]float64{"0": 0.1, "1": 0.9}}

	ranked := rerankSources(context.Background(), provider, "q", pages, 5, zap.NewNop())
	assert.Equal(t, "b", ranked[0].result.URL)
	assert.Equal(t, "a", ranked[1].result.URL)
}

func TestRerankSources_NilProviderPassesThrough(t *testing.T) {
	pages := []scrapedPage{pageFor("a"), pageFor("b")}
	ranked := rerankSources(context.Background(), nil, "q", pages, 5, zap.NewNop())
	assert.Equal(t, pages, ranked)
}

func TestRerankSources_FailedCallPassesThrough(t *testing.T) {
	pages := []scrapedPage{pageFor("a"), pageFor("b")}
	provider := &fakeRerankProvider{err: errors.New("down")}
	ranked := rerankSources(context.Background(), provider, "q", pages, 5, zap.NewNop())
	assert.Equal(t, pages, ranked)
}

func TestRerankSources_CapsToTopN(t *testing.T) {
	pages := []scrapedPage{pageFor("a"), pageFor("b"), pageFor("c")}
	provider := &fakeRerankProvider{scores: map[string]float64{"0": 0.1, "1": 0.5, "2": 0.9}}
	ranked := rerankSources(context.Background(), provider, "q", pages, 2, zap.NewNop())
	assert.Len(t, ranked, 2)
}
