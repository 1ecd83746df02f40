package research

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/llm/rerank"
)

// rerankSources re-orders sources by semantic match to the query using a
// rerank.Provider, keeping at most topN. It mirrors rag.Reranker's
// scoreWith pattern: a nil provider or a failed call is a no-op (sources
// pass through in their incoming, credibility-sorted order) rather than
// failing the whole pipeline over an optional step.
func rerankSources(ctx context.Context, provider rerank.Provider, query string, pages []scrapedPage, topN int, logger *zap.Logger) []scrapedPage {
	if provider == nil || len(pages) == 0 {
		return capPages(pages, topN)
	}

	docs := make([]rerank.Document, len(pages))
	for i, p := range pages {
		docs[i] = rerank.Document{Text: p.content.Title + "\n" + p.content.Text, ID: fmt.Sprintf("%d", i)}
	}

	resp, err := provider.Rerank(ctx, &rerank.RerankRequest{Query: query, Documents: docs, TopN: len(docs)})
	if err != nil {
		logger.Warn("research reranker call failed, keeping credibility order", zap.Error(err))
		return capPages(pages, topN)
	}

	scores := make([]float64, len(pages))
	for _, res := range resp.Results {
		if res.Index >= 0 && res.Index < len(scores) {
			scores[res.Index] = res.RelevanceScore
		}
	}

	type scored struct {
		page  scrapedPage
		score float64
	}
	ranked := make([]scored, len(pages))
	for i, p := range pages {
		ranked[i] = scored{page: p, score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	ordered := make([]scrapedPage, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.page
	}
	return capPages(ordered, topN)
}

func capPages(pages []scrapedPage, topN int) []scrapedPage {
	if topN > 0 && topN < len(pages) {
		return pages[:topN]
	}
	return pages
}
