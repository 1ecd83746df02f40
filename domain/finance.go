package domain

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/types"
)

var tickerDollarPattern = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)
var tickerPhrasePattern = regexp.MustCompile(`(?i)(?:stock price of|share price of|ticker)\s+([A-Za-z]{1,5})\b|\b([A-Z]{2,5})\s+stock\b`)

// FinanceRegexExtractor pulls a ticker symbol out of a query, preferring an
// explicit "$TICKER" form over a looser phrase match.
type FinanceRegexExtractor struct{}

func (FinanceRegexExtractor) Extract(ctx context.Context, query string) (Entity, bool) {
	if m := tickerDollarPattern.FindStringSubmatch(query); m != nil {
		return Entity{Primary: strings.ToUpper(m[1])}, true
	}
	if m := tickerPhrasePattern.FindStringSubmatch(query); m != nil {
		ticker := firstNonEmptyGroup(m[1:])
		if ticker != "" {
			return Entity{Primary: strings.ToUpper(ticker)}, true
		}
	}
	return Entity{}, false
}

// OfflineFinanceProvider deterministically synthesizes a quote from the
// ticker symbol, in the same no-network spirit as OfflineWeatherProvider;
// intended as the public fallback behind a real commercial quote provider,
// per §4.7's "commercial provider primary, public fallback" shape.
type OfflineFinanceProvider struct{ name string }

func NewOfflineFinanceProvider() *OfflineFinanceProvider {
	return &OfflineFinanceProvider{name: "offline-synthetic"}
}

func (p *OfflineFinanceProvider) Name() string { return p.name }

func (p *OfflineFinanceProvider) Fetch(ctx context.Context, entity Entity) (map[string]any, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entity.Primary))
	seed := h.Sum32()

	price := float64(seed%50000)/100 + 1 // 1.00 .. 500.99
	changePct := float64(int32(seed%4001)-2000) / 100 // -20.00 .. 20.00

	return map[string]any{
		"ticker":          entity.Primary,
		"price":           price,
		"change_pct":      changePct,
	}, nil
}

func financeFormatter(entity Entity, payload map[string]any) string {
	changePct, _ := payload["change_pct"].(float64)
	direction := "up"
	if changePct < 0 {
		direction = "down"
	}
	return fmt.Sprintf("%s: $%.2f, %s %.2f%% today", entity.Primary, payload["price"], direction, absFloat(changePct))
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// NewFinanceStrategy builds the Finance domain Strategy (§4.7).
func NewFinanceStrategy(extractor EntityExtractor, primary, fallback Provider, logger *zap.Logger) *Strategy {
	return NewStrategy(types.TaskDomainFinance, extractor, primary, fallback, financeFormatter, logger)
}
