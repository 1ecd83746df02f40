package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeExtractor struct {
	fail map[string]bool
	slow map[string]bool
}

func (f *fakeExtractor) Extract(ctx context.Context, rawURL string) (*ExtractedContent, error) {
	if f.fail[rawURL] {
		return nil, errors.New("extract failed")
	}
	if f.slow[rawURL] {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &ExtractedContent{Title: "title for " + rawURL, Text: "body"}, nil
}

func TestScrapeAll_SkipsFailures(t *testing.T) {
	extractor := &fakeExtractor{fail: map[string]bool{"https://bad.com": true}}
	candidates := []SearchResult{{URL: "https://good.com"}, {URL: "https://bad.com"}}

	pages := scrapeAll(context.Background(), extractor, candidates, 2, time.Second, 0)
	assert.Len(t, pages, 1)
	assert.Equal(t, "https://good.com", pages[0].result.URL)
}

func TestScrapeAll_RespectsPerURLTimeout(t *testing.T) {
	extractor := &fakeExtractor{slow: map[string]bool{"https://slow.com": true}}
	candidates := []SearchResult{{URL: "https://slow.com"}, {URL: "https://fast.com"}}

	pages := scrapeAll(context.Background(), extractor, candidates, 2, 10*time.Millisecond, 0)
	assert.Len(t, pages, 1)
	assert.Equal(t, "https://fast.com", pages[0].result.URL)
}

func TestScrapeAll_ThrottlesToConfiguredRate(t *testing.T) {
	extractor := &fakeExtractor{}
	candidates := []SearchResult{{URL: "https://a.com"}, {URL: "https://b.com"}, {URL: "https://c.com"}}

	start := time.Now()
	pages := scrapeAll(context.Background(), extractor, candidates, 3, time.Second, 2)
	elapsed := time.Since(start)

	assert.Len(t, pages, 3)
	// burst 1: only the first start is immediate, the other 2 each wait
	// ~500ms for the next token at 2/s, so the whole batch takes ~1s.
	assert.GreaterOrEqual(t, elapsed, 400*time.Millisecond)
}

func TestScrapeAll_ZeroRateDisablesThrottling(t *testing.T) {
	extractor := &fakeExtractor{}
	candidates := []SearchResult{{URL: "https://a.com"}, {URL: "https://b.com"}, {URL: "https://c.com"}}

	start := time.Now()
	pages := scrapeAll(context.Background(), extractor, candidates, 3, time.Second, 0)
	elapsed := time.Since(start)

	assert.Len(t, pages, 3)
	assert.Less(t, elapsed, 200*time.Millisecond)
}
