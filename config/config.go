package config

import (
	"time"

	"github.com/BaSui01/agentflow/rag"
	"github.com/BaSui01/agentflow/research"
	"github.com/BaSui01/agentflow/router"
	"github.com/BaSui01/agentflow/sandbox"
	"github.com/BaSui01/agentflow/workflow"
)

// LLMProviderConfig is one entry in Config.LLM.Providers, matching §6's
// per-provider field list exactly. A provider whose APIKeyEnv names an
// unset environment variable is disabled rather than failing startup —
// the collaborator wiring providers from this record is responsible for
// that check, since config itself never reads the environment.
type LLMProviderConfig struct {
	Enabled            bool          `json:"enabled"`
	Name               string        `json:"name"`
	Endpoint           string        `json:"endpoint,omitempty"`
	APIKeyEnv          string        `json:"api_key_env"`
	Model              string        `json:"model"`
	TemperatureDefault float32       `json:"temperature_default"`
	MaxTokensDefault   int           `json:"max_tokens_default"`
	Timeout            time.Duration `json:"timeout_ms"`
	Priority           int           `json:"priority"`
}

// DomainProviderConfig is one entry in Config.Domain, one per domain
// strategy (weather, finance, routing).
type DomainProviderConfig struct {
	Enabled   bool          `json:"enabled"`
	Primary   string        `json:"primary"`
	Fallback  string        `json:"fallback,omitempty"`
	APIKeyEnv string        `json:"api_key_env,omitempty"`
	Timeout   time.Duration `json:"timeout_ms"`
}

// DomainConfig groups the three domain strategies' provider settings.
type DomainConfig struct {
	Weather DomainProviderConfig `json:"weather"`
	Finance DomainProviderConfig `json:"finance"`
	Routing DomainProviderConfig `json:"routing"`
}

// ChatConfig tunes the Chat strategy's running-history truncation.
type ChatConfig struct {
	TokenBudget int     `json:"token_budget"`
	Temperature float32 `json:"temperature"`
}

// Config is the engine's single configuration record. Every field has a
// defined default (see Default); the HTTP/CLI collaborator is the one
// that loads a populated Config (from YAML, flags, or env) and is
// responsible for the missing-API-key-disables-the-provider rule the
// spec calls for — this package only defines the shape and its zero-risk
// defaults.
type Config struct {
	LLM      LLMConfig
	Router   router.HybridConfig
	Research research.Config
	Code     sandbox.SandboxConfig
	RAG      rag.PipelineConfig
	Domain   DomainConfig
	Chat     ChatConfig
	Workflow workflow.Config
}

// LLMConfig is the LLM provider list plus the model name the engine's
// own LLM-backed collaborators (planner, decomposer, aggregator, entity
// extractors) default to when a call site doesn't override it.
type LLMConfig struct {
	Providers    []LLMProviderConfig
	DefaultModel string
}

// Default returns the spec's stated defaults for every section. The
// LLM provider list is empty: no provider can be assumed present
// without credentials, so the collaborator appends whichever providers
// its deployment actually has keys for.
func Default() Config {
	return Config{
		LLM:      LLMConfig{DefaultModel: "gpt-4o-mini"},
		Router:   router.DefaultHybridConfig(),
		Research: research.DefaultConfig(),
		Code:     sandbox.DefaultSandboxConfig(),
		RAG:      rag.DefaultPipelineConfig(),
		Domain: DomainConfig{
			Weather: DomainProviderConfig{Enabled: true, Primary: "offline", Timeout: 10 * time.Second},
			Finance: DomainProviderConfig{Enabled: true, Primary: "offline", Timeout: 10 * time.Second},
			Routing: DomainProviderConfig{Enabled: true, Primary: "offline", Timeout: 10 * time.Second},
		},
		Chat:     ChatConfig{TokenBudget: 4000, Temperature: 0.7},
		Workflow: workflow.DefaultConfig(),
	}
}
