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

var weatherLocationPattern = regexp.MustCompile(`(?i)weather\s+(?:in|for|at)\s+([a-zA-Z\s]+?)(?:[.?!]|$)|forecast\s+for\s+([a-zA-Z\s]+?)(?:[.?!]|$)`)
var weatherLocationPatternZH = regexp.MustCompile(`([\p{Han}]+)(?:的天气|天气预报)`)

// WeatherRegexExtractor pulls a location out of an English or Chinese
// weather query by pattern match.
type WeatherRegexExtractor struct{}

func (WeatherRegexExtractor) Extract(ctx context.Context, query string) (Entity, bool) {
	if m := weatherLocationPattern.FindStringSubmatch(query); m != nil {
		loc := strings.TrimSpace(firstNonEmptyGroup(m[1:]))
		if loc != "" {
			return Entity{Primary: loc}, true
		}
	}
	if m := weatherLocationPatternZH.FindStringSubmatch(query); m != nil {
		return Entity{Primary: strings.TrimSpace(m[1])}, true
	}
	return Entity{}, false
}

// OfflineWeatherProvider deterministically synthesizes weather data from
// the location name, with no external network dependency. Grounded on
// _examples/Tangerg-lynx/ai/providers/tools/fakeweatherquery's own
// algorithmic, no-real-API-call approach, used here as the built-in
// fallback provider rather than a tool-call demo.
type OfflineWeatherProvider struct{ name string }

func NewOfflineWeatherProvider() *OfflineWeatherProvider {
	return &OfflineWeatherProvider{name: "offline-synthetic"}
}

func (p *OfflineWeatherProvider) Name() string { return p.name }

func (p *OfflineWeatherProvider) Fetch(ctx context.Context, entity Entity) (map[string]any, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(entity.Primary)))
	seed := h.Sum32()

	tempC := int(seed%35) - 5 // -5..29
	conditions := []string{"clear", "partly cloudy", "overcast", "light rain", "windy"}
	condition := conditions[seed%uint32(len(conditions))]
	humidity := int(seed%60) + 30 // 30..89

	return map[string]any{
		"location":      entity.Primary,
		"temperature_c": tempC,
		"condition":     condition,
		"humidity_pct":  humidity,
	}, nil
}

func weatherFormatter(entity Entity, payload map[string]any) string {
	return fmt.Sprintf("%s: %s, %v°C, %v%% humidity",
		entity.Primary, payload["condition"], payload["temperature_c"], payload["humidity_pct"])
}

// NewWeatherStrategy builds the Weather domain Strategy (§4.7). extractor
// may be an LLMEntityExtractor instead of WeatherRegexExtractor when a
// dedicated LLM extraction call is configured; fallback may be nil.
func NewWeatherStrategy(extractor EntityExtractor, primary, fallback Provider, logger *zap.Logger) *Strategy {
	return NewStrategy(types.TaskDomainWeather, extractor, primary, fallback, weatherFormatter, logger)
}

func firstNonEmptyGroup(groups []string) string {
	for _, g := range groups {
		if strings.TrimSpace(g) != "" {
			return g
		}
	}
	return ""
}
