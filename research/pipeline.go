package research

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/agentflow/llm/rerank"
	"github.com/BaSui01/agentflow/types"
)

const synthesisSystemPrompt = `You are a research assistant. You are given a user's question and a set of
extracted source texts. Write a concise, well-organized Markdown summary that answers the question,
citing sources by title where relevant. If the sources are insufficient or absent, say so plainly
instead of fabricating an answer.`

// Config controls the pipeline's concurrency and selection bounds. All
// defaults match §4.3.
type Config struct {
	TopURLs             int
	SearchTimeout       time.Duration
	ScrapeWorkers       int
	ScrapePerURLTimeout time.Duration
	// ScrapeRatePerSecond caps how many extractions start per second across
	// the whole worker pool, independent of ScrapeWorkers' concurrency cap —
	// a polite, target-friendly floor under a burst of same-host URLs.
	// <= 0 disables throttling.
	ScrapeRatePerSecond float64
	RerankTopN          int
}

// DefaultConfig returns the spec's stated defaults: top 9 URLs globally,
// a worker pool of 5 for scraping, top 5 retained after rerank, scraping
// throttled to at most 10 extraction starts per second.
func DefaultConfig() Config {
	return Config{
		TopURLs:             9,
		SearchTimeout:       10 * time.Second,
		ScrapeWorkers:       5,
		ScrapePerURLTimeout: 15 * time.Second,
		ScrapeRatePerSecond: 10,
		RerankTopN:          5,
	}
}

// Pipeline implements the Research strategy end to end.
type Pipeline struct {
	search    SearchClient
	extractor ContentExtractor
	planner   *Planner
	scorer    *CredibilityScorer
	reranker  rerank.Provider // optional; nil disables the rerank step
	completer Completer
	model     string
	config    Config
	logger    *zap.Logger
}

// NewPipeline builds a research Pipeline. reranker may be nil, in which
// case sources are returned in credibility order, per §4.3 step 6 being
// explicitly optional.
func NewPipeline(search SearchClient, extractor ContentExtractor, completer Completer, reranker rerank.Provider, model string, config Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		search:    search,
		extractor: extractor,
		planner:   NewPlanner(completer, model),
		scorer:    NewCredibilityScorer(DefaultCredibilityWeights()),
		reranker:  reranker,
		completer: completer,
		model:     model,
		config:    config,
		logger:    logger,
	}
}

// Research runs the full pipeline and always returns a ResearchResult, even
// when zero sources survive scraping — partial (or empty) success is the
// norm per §4.3's invariant, not an error.
func (p *Pipeline) Research(ctx context.Context, query string) (*types.ResearchResult, error) {
	plan := p.planner.Plan(ctx, query)

	candidates := p.searchAll(ctx, plan)
	selected := dedupAndSelect(candidates, p.config.TopURLs)

	pages := scrapeAll(ctx, p.extractor, selected, p.config.ScrapeWorkers, p.config.ScrapePerURLTimeout, p.config.ScrapeRatePerSecond)
	p.scoreAndSort(pages)

	pages = rerankSources(ctx, p.reranker, query, pages, p.config.RerankTopN, p.logger)

	sources := make([]types.Source, len(pages))
	for i, pg := range pages {
		score, detail := p.scorer.Score(pg.result.URL, pg.content)
		sources[i] = types.Source{
			URL:               pg.result.URL,
			Title:             firstNonEmpty(pg.content.Title, pg.result.Title),
			Snippet:           pg.result.Snippet,
			CredibilityScore:  score,
			CredibilityDetail: detail,
		}
	}

	summary := p.synthesize(ctx, query, pages)

	return &types.ResearchResult{
		Query:   query,
		Plan:    plan,
		Sources: sources,
		Summary: summary,
	}, nil
}

// searchAll runs every subquery concurrently, each under its own timeout.
// A failed subquery is skipped, not fatal, per §4.3 step 2.
func (p *Pipeline) searchAll(ctx context.Context, subqueries []string) []SearchResult {
	results := make([][]SearchResult, len(subqueries))
	g, gctx := errgroup.WithContext(ctx)

	for i, q := range subqueries {
		i, q := i, q
		g.Go(func() error {
			searchCtx, cancel := context.WithTimeout(gctx, p.config.SearchTimeout)
			defer cancel()

			res, err := p.search.Search(searchCtx, q)
			if err != nil {
				p.logger.Warn("research subquery search failed, skipping", zap.String("subquery", q), zap.Error(err))
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var out []SearchResult
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// scoreAndSort orders scraped pages by credibility, descending, in place.
func (p *Pipeline) scoreAndSort(pages []scrapedPage) {
	type keyed struct {
		page  scrapedPage
		score float64
	}
	keys := make([]keyed, len(pages))
	for i, pg := range pages {
		score, _ := p.scorer.Score(pg.result.URL, pg.content)
		keys[i] = keyed{page: pg, score: score}
	}
	// insertion sort is fine here: pages is bounded by TopURLs (default 9).
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j].score > keys[j-1].score; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	for i, k := range keys {
		pages[i] = k.page
	}
}

// synthesize produces the final Markdown summary. With zero surviving
// sources it still returns an explanatory summary rather than an error,
// per §4.3's invariant.
func (p *Pipeline) synthesize(ctx context.Context, query string, pages []scrapedPage) string {
	if len(pages) == 0 {
		return "No sources could be retrieved for this query; unable to produce a sourced summary."
	}

	var b strings.Builder
	for _, pg := range pages {
		b.WriteString("### ")
		b.WriteString(firstNonEmpty(pg.content.Title, pg.result.URL))
		b.WriteString("\n")
		b.WriteString(pg.content.Text)
		b.WriteString("\n\n")
	}

	summary, err := p.completer.Complete(ctx, synthesisSystemPrompt, "Question: "+query+"\n\nSources:\n"+b.String(), 0.3)
	if err != nil {
		p.logger.Warn("research synthesis call failed", zap.Error(err))
		return "Sources were retrieved but the synthesis step failed; see individual sources below."
	}
	return summary
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
