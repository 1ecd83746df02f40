// Package sandbox runs LLM-generated code behind three defensive layers:
// an AST walk (Validator), a restricted interpreter (Interpreter), and an
// isolated process or container (ExecutionBackend). A program rejected by
// layer 1 or 2 never reaches layer 3.
package sandbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExecutionMode selects the Layer 3 backend.
type ExecutionMode string

const (
	ModeContainer ExecutionMode = "container"
	ModeProcess   ExecutionMode = "process" // fallback when no container runtime is available
)

// Language enumerates the sandbox's accepted source languages. The
// current backend admits exactly one.
type Language string

const LangGo Language = "go"

// SandboxConfig configures the executor and its Layer 3 backend. Field
// names and defaults mirror the engine's code-execution config block.
type SandboxConfig struct {
	Mode            ExecutionMode `json:"mode"`
	Timeout         time.Duration `json:"timeout"`
	MaxMemoryMB     int           `json:"max_memory_mb"`
	MaxCPUPercent   int           `json:"max_cpu_percent"`
	MaxOutputLines  int           `json:"max_output_lines"`
	AllowedImports  []string      `json:"allowed_imports"`
	EnableContainer bool          `json:"enable_container_sandbox"`
}

// DefaultSandboxConfig returns spec defaults: 30s wall clock, 512MiB,
// 1 CPU, 1000 output lines, container sandbox enabled where available.
func DefaultSandboxConfig() SandboxConfig {
	policy := DefaultImportPolicy()
	imports := make([]string, 0, len(policy.Allowed))
	for p := range policy.Allowed {
		imports = append(imports, p)
	}
	return SandboxConfig{
		Mode:            ModeContainer,
		Timeout:         30 * time.Second,
		MaxMemoryMB:     512,
		MaxCPUPercent:   100,
		MaxOutputLines:  1000,
		AllowedImports:  imports,
		EnableContainer: true,
	}
}

func (c SandboxConfig) importPolicy() ImportPolicy {
	if len(c.AllowedImports) == 0 {
		return DefaultImportPolicy()
	}
	allowed := make(map[string]bool, len(c.AllowedImports))
	for _, p := range c.AllowedImports {
		allowed[p] = true
	}
	return ImportPolicy{Allowed: allowed}
}

// ExecutionRequest represents a code execution request.
type ExecutionRequest struct {
	ID       string        `json:"id"`
	Language Language      `json:"language"`
	Code     string        `json:"code"`
	Stdin    string        `json:"stdin,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// ExecutionResult represents the result of code execution.
type ExecutionResult struct {
	ID        string        `json:"id"`
	Success   bool          `json:"success"`
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Truncated bool          `json:"truncated,omitempty"`
}

// ExecutionBackend is the sandbox's Layer 3: an isolated place to run a
// program that already passed layers 1 and 2.
type ExecutionBackend interface {
	Execute(ctx context.Context, req *ExecutionRequest, config SandboxConfig) (*ExecutionResult, error)
	Cleanup() error
	Name() string
}

// ExecutorStats tracks execution statistics.
type ExecutorStats struct {
	TotalExecutions   int64         `json:"total_executions"`
	SuccessExecutions int64         `json:"success_executions"`
	FailedExecutions  int64         `json:"failed_executions"`
	TimeoutExecutions int64         `json:"timeout_executions"`
	TotalDuration     time.Duration `json:"total_duration"`
}

// SandboxExecutor runs a request through all three defensive layers and
// tracks aggregate stats.
type SandboxExecutor struct {
	config    SandboxConfig
	validator *Validator
	backend   ExecutionBackend
	logger    *zap.Logger
	mu        sync.RWMutex
	stats     ExecutorStats
}

// NewSandboxExecutor creates a new sandbox executor. backend serves Layer
// 3; Layers 1 and 2 always run in-process ahead of it regardless of
// backend choice.
func NewSandboxExecutor(config SandboxConfig, backend ExecutionBackend, logger *zap.Logger) *SandboxExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SandboxExecutor{
		config:    config,
		validator: NewValidator(config.importPolicy()),
		backend:   backend,
		logger:    logger,
	}
}

// Execute runs code through layers 1, 2, and 3 in order. It never returns
// a non-nil error for a rejected or failed program — failure is carried
// in ExecutionResult.Success/Error so the Code strategy can surface it as
// CodeResult without throwing.
func (s *SandboxExecutor) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResult, error) {
	start := time.Now()

	if strings.TrimSpace(req.Code) == "" {
		return nil, fmt.Errorf("code is required")
	}
	if req.Language != LangGo {
		return nil, fmt.Errorf("unsupported language %q: sandbox only accepts %q", req.Language, LangGo)
	}

	violations, err := s.validator.Validate(req.Code)
	if err != nil {
		return s.recordAndReturn(start, &ExecutionResult{ID: req.ID, Success: false, Error: err.Error()}), nil
	}
	if len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}
		s.logger.Info("sandbox layer 1 rejected submission",
			zap.String("id", req.ID), zap.Strings("violations", msgs))
		return s.recordAndReturn(start, &ExecutionResult{
			ID:      req.ID,
			Success: false,
			Stderr:  "sandbox layer 1 rejected submission:\n" + strings.Join(msgs, "\n"),
		}), nil
	}

	timeout := s.config.Timeout
	if req.Timeout > 0 && req.Timeout < timeout {
		timeout = req.Timeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := s.backend.Execute(execCtx, req, s.config)
	if err != nil {
		return nil, err
	}

	truncateOutput(result, s.config.MaxOutputLines)
	return s.recordAndReturn(start, result), nil
}

func (s *SandboxExecutor) recordAndReturn(start time.Time, result *ExecutionResult) *ExecutionResult {
	result.Duration = time.Since(start)

	s.mu.Lock()
	s.stats.TotalExecutions++
	s.stats.TotalDuration += result.Duration
	if result.Success {
		s.stats.SuccessExecutions++
	} else {
		s.stats.FailedExecutions++
		if result.Error == "execution timed out" {
			s.stats.TimeoutExecutions++
		}
	}
	s.mu.Unlock()

	return result
}

func truncateOutput(result *ExecutionResult, maxLines int) {
	if maxLines <= 0 {
		return
	}
	if truncated, ok := truncateLines(result.Stdout, maxLines); ok {
		result.Stdout = truncated
		result.Truncated = true
	}
	if truncated, ok := truncateLines(result.Stderr, maxLines); ok {
		result.Stderr = truncated
		result.Truncated = true
	}
}

func truncateLines(s string, maxLines int) (string, bool) {
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s, false
	}
	return strings.Join(lines[:maxLines], "\n"), true
}

// Stats returns execution statistics.
func (s *SandboxExecutor) Stats() ExecutorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Cleanup releases resources held by the Layer 3 backend.
func (s *SandboxExecutor) Cleanup() error {
	return s.backend.Cleanup()
}
