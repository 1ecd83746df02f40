package research

import (
	"net/url"
	"strings"
	"time"
)

// CredibilityWeights controls how much each signal moves the base 0.5
// score. Exposed as constructor parameters, the same way
// rag.RerankWeights exposes its tunable split (§4.3 Open Questions: the
// spec states this scheme is a guideline, not a contract).
type CredibilityWeights struct {
	Academic      float64
	Government    float64
	Tier1News     float64
	Forum         float64
	PeerReviewed  float64
	Clickbait     float64
	RecentContent float64
	StaleContent  float64
}

// DefaultCredibilityWeights is this implementation's chosen default scheme.
func DefaultCredibilityWeights() CredibilityWeights {
	return CredibilityWeights{
		Academic:      0.30,
		Government:    0.25,
		Tier1News:     0.15,
		Forum:         -0.20,
		PeerReviewed:  0.10,
		Clickbait:     -0.15,
		RecentContent: 0.05,
		StaleContent:  -0.05,
	}
}

var tier1NewsDomains = map[string]bool{
	"reuters.com": true, "apnews.com": true, "bbc.com": true, "bbc.co.uk": true,
	"nytimes.com": true, "wsj.com": true, "ft.com": true, "economist.com": true,
	"bloomberg.com": true, "npr.org": true,
}

var forumHosts = []string{"reddit.com", "quora.com", "forum.", "forums.", "stackexchange.com"}

var clickbaitSignals = []string{"you won't believe", "shocking", "what happened next", "doctors hate"}

var peerReviewedSignals = []string{"peer-reviewed", "peer reviewed", "doi.org", "journal of"}

// CredibilityScorer implements the §4.3 deterministic scoring function:
// base 0.5, adjusted by domain class, content signals, and a temporal
// recency signal.
type CredibilityScorer struct {
	weights CredibilityWeights
	now     func() time.Time
}

// NewCredibilityScorer builds a scorer with the given weights.
func NewCredibilityScorer(weights CredibilityWeights) *CredibilityScorer {
	return &CredibilityScorer{weights: weights, now: time.Now}
}

// Score returns a score in [0,1] plus a short human-readable explanation of
// which signals fired.
func (s *CredibilityScorer) Score(rawURL string, content *ExtractedContent) (float64, string) {
	score := 0.5
	var reasons []string

	host := hostOf(rawURL)
	lowerText := strings.ToLower(content.Text)

	switch {
	case strings.HasSuffix(host, ".edu") || strings.Contains(lowerText, "peer-reviewed"):
		score += s.weights.Academic
		reasons = append(reasons, "academic domain or content")
	case strings.HasSuffix(host, ".gov"):
		score += s.weights.Government
		reasons = append(reasons, "government domain")
	case tier1NewsDomains[host]:
		score += s.weights.Tier1News
		reasons = append(reasons, "tier-1 news domain")
	case isForumHost(host):
		score += s.weights.Forum
		reasons = append(reasons, "forum/discussion domain")
	}

	if containsAnySignal(lowerText, peerReviewedSignals) {
		score += s.weights.PeerReviewed
		reasons = append(reasons, "peer-reviewed signal")
	}
	if containsAnySignal(lowerText, clickbaitSignals) {
		score += s.weights.Clickbait
		reasons = append(reasons, "clickbait signal")
	}

	if content.PublishedAt != nil {
		age := s.now().Sub(*content.PublishedAt)
		switch {
		case age <= 365*24*time.Hour:
			score += s.weights.RecentContent
			reasons = append(reasons, "published within the last year")
		case age > 5*365*24*time.Hour:
			score += s.weights.StaleContent
			reasons = append(reasons, "published more than 5 years ago")
		}
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no domain or content signal matched; base score")
	}
	return score, strings.Join(reasons, "; ")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Host, "www."))
}

func isForumHost(host string) bool {
	for _, f := range forumHosts {
		if strings.Contains(host, f) {
			return true
		}
	}
	return false
}

func containsAnySignal(lowerText string, signals []string) bool {
	for _, sig := range signals {
		if strings.Contains(lowerText, sig) {
			return true
		}
	}
	return false
}
