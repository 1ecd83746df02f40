// Package factory builds an llm.Manager from a flat configuration, wiring
// the three SDK-backed provider packages (anthropic, openai, gemini) and
// wrapping each in a ResilientProvider before registering it.
package factory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/llm"
	"github.com/BaSui01/agentflow/llm/circuitbreaker"
	"github.com/BaSui01/agentflow/llm/idempotency"
	"github.com/BaSui01/agentflow/llm/providers/anthropic"
	"github.com/BaSui01/agentflow/llm/providers/gemini"
	"github.com/BaSui01/agentflow/llm/providers/openai"
	"github.com/BaSui01/agentflow/llm/retry"
)

// ProviderConfig is the generic configuration accepted for one provider.
type ProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// RegistryConfig describes the set of providers to build and the fallback
// order the Manager should try them in.
type RegistryConfig struct {
	Order     []string                  `json:"order" yaml:"order"`
	Providers map[string]ProviderConfig `json:"providers" yaml:"providers"`
}

// SupportedProviders lists the built-in provider names this factory knows
// how to construct.
func SupportedProviders() []string {
	return []string{"anthropic", "openai", "gemini"}
}

// newProvider constructs one concrete llm.Provider by name.
func newProvider(ctx context.Context, name string, cfg ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
	switch name {
	case "anthropic", "claude":
		return anthropic.New(anthropic.Config{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			Name:         name,
		}, logger), nil

	case "openai":
		return openai.New(openai.Config{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Name:         name,
		}, logger), nil

	case "gemini":
		return gemini.New(ctx, gemini.Config{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			Name:         name,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown provider %q: supported providers are %v", name, SupportedProviders())
	}
}

// NewManagerFromConfig builds an llm.Manager with one ResilientProvider per
// configured entry, wired for retry/circuit-breaking/idempotency, in the
// order given by RegistryConfig.Order.
func NewManagerFromConfig(ctx context.Context, cfg RegistryConfig, logger *zap.Logger) (*llm.Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mgr := llm.NewManager(llm.ManagerConfig{Order: cfg.Order}, logger)
	idempotencyMgr := idempotency.NewMemoryManager(logger)

	for name, pcfg := range cfg.Providers {
		base, err := newProvider(ctx, name, pcfg, logger)
		if err != nil {
			logger.Warn("skipping provider: initialization failed",
				zap.String("provider", name), zap.Error(err))
			continue
		}

		resilientCfg := llm.DefaultResilientProviderConfig()
		breaker := circuitbreaker.NewCircuitBreaker(resilientCfg.CircuitBreakerConfig, logger)
		retryer := retry.NewBackoffRetryer(resilientCfg.RetryPolicy, logger)

		mgr.Register(name, llm.NewResilientProvider(base, retryer, idempotencyMgr, breaker, resilientCfg, logger))
		logger.Info("provider registered", zap.String("provider", name))
	}

	return mgr, nil
}
