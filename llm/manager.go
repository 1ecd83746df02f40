package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BaSui01/agentflow/types"
	"go.uber.org/zap"
)

// ManagerConfig controls the Manager's provider ordering and health cache.
type ManagerConfig struct {
	// Order lists provider names in the sequence the Manager falls through
	// when no PreferredProvider is set on the request. Providers registered
	// but absent from Order are appended in registration order after it.
	Order []string

	// HealthCacheTTL is how long a provider's last health probe result is
	// trusted before Available is probed again. Spec calls for "a health
	// probe cached for a few seconds".
	HealthCacheTTL time.Duration
}

// DefaultManagerConfig returns the Manager's defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{HealthCacheTTL: 5 * time.Second}
}

// healthEntry is the cached result of one Available(ctx) probe.
type healthEntry struct {
	healthy   bool
	checkedAt time.Time
}

// Manager is the LLM Provider Manager: it owns an ordered set of Providers
// and picks one per request by preferred -> primary(Order[0]) -> registration
// order, skipping providers whose cached health probe says unhealthy, and
// retrying each candidate's Completion with its own bounded backoff (carried
// by wrapping every registered Provider in a ResilientProvider) before moving
// to the next candidate. If every candidate fails, it returns a terminal
// AllProvidersFailed error carrying the last underlying error.
type Manager struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	health    map[string]*healthEntry
	cfg       ManagerConfig
	logger    *zap.Logger
}

// NewManager creates an empty Manager. Register providers with Register.
func NewManager(cfg ManagerConfig, logger *zap.Logger) *Manager {
	if cfg.HealthCacheTTL <= 0 {
		cfg.HealthCacheTTL = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		providers: make(map[string]Provider),
		health:    make(map[string]*healthEntry),
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "llm.manager")),
	}
}

// Register adds or replaces a provider under the given name.
func (m *Manager) Register(name string, p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.providers[name]; !exists {
		m.order = append(m.order, name)
	}
	m.providers[name] = p
}

// candidateOrder returns the provider names to try, preferred first, then
// the configured Order, then any remaining registered providers in the
// order they were registered.
func (m *Manager) candidateOrder(preferred string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(m.providers))
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		if _, ok := m.providers[name]; !ok {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	add(preferred)
	for _, name := range m.cfg.Order {
		add(name)
	}
	for _, name := range m.order {
		add(name)
	}
	return out
}

// isHealthy consults the cached probe, refreshing it if stale.
func (m *Manager) isHealthy(ctx context.Context, name string, p Provider) bool {
	m.mu.RLock()
	entry := m.health[name]
	m.mu.RUnlock()

	if entry != nil && time.Since(entry.checkedAt) < m.cfg.HealthCacheTTL {
		return entry.healthy
	}

	probeStart := time.Now()
	healthy := p.Available(ctx)
	recordHealthProbe(name, healthy, time.Since(probeStart))

	m.mu.Lock()
	m.health[name] = &healthEntry{healthy: healthy, checkedAt: time.Now()}
	m.mu.Unlock()

	return healthy
}

// Complete sends req to the best available provider, falling through the
// candidate order on failure. It returns an *types.Error with Kind
// KindAllProvidersFailed if every candidate is exhausted.
func (m *Manager) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	candidates := m.candidateOrder(req.PreferredProvider)
	if len(candidates) == 0 {
		return nil, (&types.Error{
			Code:    ErrServiceUnavailable,
			Kind:    types.KindAllProvidersFailed,
			Message: "no providers registered",
		})
	}

	var lastErr error
	var lastProvider string

	for _, name := range candidates {
		if ctx.Err() != nil {
			return nil, (&types.Error{
				Code:    ErrInternalError,
				Kind:    types.KindCancelled,
				Message: "completion cancelled",
				Cause:   ctx.Err(),
			})
		}

		m.mu.RLock()
		p := m.providers[name]
		m.mu.RUnlock()
		if p == nil {
			continue
		}

		if !m.isHealthy(ctx, name, p) {
			m.logger.Debug("skipping unhealthy provider", zap.String("provider", name))
			continue
		}

		resp, err := p.Completion(ctx, req)
		if err == nil {
			return resp, nil
		}

		m.logger.Warn("provider completion failed, trying next candidate",
			zap.String("provider", name),
			zap.Error(err),
		)
		lastErr = err
		lastProvider = name

		m.mu.Lock()
		m.health[name] = &healthEntry{healthy: false, checkedAt: time.Now()}
		m.mu.Unlock()
	}

	msg := "all providers failed"
	if lastProvider != "" {
		msg = fmt.Sprintf("all providers failed, last attempted %q", lastProvider)
	}
	return nil, (&types.Error{
		Code:      ErrProviderUnavailable,
		Kind:      types.KindAllProvidersFailed,
		Message:   msg,
		Provider:  lastProvider,
		Retryable: false,
		Cause:     lastErr,
	})
}
