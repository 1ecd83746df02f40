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

var routingPattern = regexp.MustCompile(`(?i)(?:directions?|route|drive|distance)\s+from\s+([a-zA-Z\s]+?)\s+to\s+([a-zA-Z\s]+?)(?:[.?!]|$)|how to get (?:from\s+)?([a-zA-Z\s]+?)\s+to\s+([a-zA-Z\s]+?)(?:[.?!]|$)`)
var routingPatternZH = regexp.MustCompile(`从([\p{Han}]+?)到([\p{Han}]+?)(?:怎么走|怎么去|怎样走|如何走|的路线|路线|多远|要多久|[^\p{Han}]|$)`)

// RoutingRegexExtractor pulls an origin+destination pair out of a query.
type RoutingRegexExtractor struct{}

func (RoutingRegexExtractor) Extract(ctx context.Context, query string) (Entity, bool) {
	if m := routingPattern.FindStringSubmatch(query); m != nil {
		origin := firstNonEmptyGroup([]string{m[1], m[3]})
		dest := firstNonEmptyGroup([]string{m[2], m[4]})
		if origin != "" && dest != "" {
			return Entity{Primary: strings.TrimSpace(origin), Secondary: strings.TrimSpace(dest)}, true
		}
	}
	if m := routingPatternZH.FindStringSubmatch(query); m != nil {
		return Entity{Primary: m[1], Secondary: m[2]}, true
	}
	return Entity{}, false
}

// OfflineRoutingProvider deterministically synthesizes a distance/duration
// estimate from the origin+destination pair, same no-network approach as
// the other offline providers in this package.
type OfflineRoutingProvider struct{ name string }

func NewOfflineRoutingProvider() *OfflineRoutingProvider {
	return &OfflineRoutingProvider{name: "offline-synthetic"}
}

func (p *OfflineRoutingProvider) Name() string { return p.name }

func (p *OfflineRoutingProvider) Fetch(ctx context.Context, entity Entity) (map[string]any, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(entity.Primary + "|" + entity.Secondary)))
	seed := h.Sum32()

	distanceKm := float64(seed%2000) + 1
	durationMin := distanceKm / 80 * 60 // assume average 80km/h

	return map[string]any{
		"origin":       entity.Primary,
		"destination":  entity.Secondary,
		"distance_km":  distanceKm,
		"duration_min": durationMin,
	}, nil
}

func routingFormatter(entity Entity, payload map[string]any) string {
	return fmt.Sprintf("%s to %s: %.0f km, about %.0f minutes",
		entity.Primary, entity.Secondary, payload["distance_km"], payload["duration_min"])
}

// NewRoutingStrategy builds the Routing domain Strategy (§4.7).
func NewRoutingStrategy(extractor EntityExtractor, primary, fallback Provider, logger *zap.Logger) *Strategy {
	return NewStrategy(types.TaskDomainRouting, extractor, primary, fallback, routingFormatter, logger)
}
