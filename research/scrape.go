package research

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ExtractedContent is the result of fetching and extracting one URL's main
// textual content.
type ExtractedContent struct {
	Title       string
	Text        string
	PublishedAt *time.Time
}

// ContentExtractor is the external collaborator that fetches a URL and pulls
// its main article text out of the surrounding page (boilerplate, nav,
// ads). This package never fetches or parses HTML itself.
type ContentExtractor interface {
	Extract(ctx context.Context, rawURL string) (*ExtractedContent, error)
}

type scrapedPage struct {
	result  SearchResult
	content *ExtractedContent
}

// scrapeAll fetches every candidate concurrently through a bounded worker
// pool (errgroup.SetLimit), each under its own per-URL timeout, and
// throttled to ratePerSecond extraction starts per second (<= 0 disables
// throttling). A per-URL failure is skipped, not fatal, matching the
// guardrails chain's collect-everything style: every goroutine reports
// into its own result slot and always returns nil so one failure can't
// cancel the others.
func scrapeAll(ctx context.Context, extractor ContentExtractor, candidates []SearchResult, workers int, perURLTimeout time.Duration, ratePerSecond float64) []scrapedPage {
	if workers <= 0 {
		workers = 5
	}

	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}

	results := make([]scrapedPage, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return nil
				}
			}

			fetchCtx, cancel := context.WithTimeout(gctx, perURLTimeout)
			defer cancel()

			content, err := extractor.Extract(fetchCtx, c.URL)
			if err != nil || content == nil {
				return nil
			}
			results[i] = scrapedPage{result: c, content: content}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]scrapedPage, 0, len(candidates))
	for _, p := range results {
		if p.content != nil {
			out = append(out, p)
		}
	}
	return out
}
