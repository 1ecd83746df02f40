package research

import (
	"context"
	"net/url"
	"strings"
)

// SearchResult is one hit returned by a SearchClient for a single subquery.
type SearchResult struct {
	URL     string
	Title   string
	Snippet string
}

// SearchClient abstracts a web-search engine. Implementations call out to a
// real search API (Bing, Google, Brave, SerpAPI, ...); this package only
// depends on this narrow interface.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// canonicalURL reduces a URL to host+path for dedup purposes, dropping the
// scheme, query string, fragment, and a trailing slash so
// "https://x.com/a?utm=1" and "http://x.com/a/" collapse to the same key.
func canonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	path := strings.TrimSuffix(u.Path, "/")
	return strings.ToLower(u.Host + path)
}

// dedupAndSelect dedups results by canonical host+path, keeping the first
// occurrence (earliest subquery, then earliest within that subquery's
// result list), and returns at most topN.
func dedupAndSelect(results []SearchResult, topN int) []SearchResult {
	seen := make(map[string]bool, len(results))
	out := make([]SearchResult, 0, topN)
	for _, r := range results {
		key := canonicalURL(r.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
		if len(out) >= topN {
			break
		}
	}
	return out
}
