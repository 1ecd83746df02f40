package code

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/sandbox"
	"github.com/BaSui01/agentflow/types"
)

const generateSystemPrompt = `You write self-contained Go programs (package main, a func main). Given a
problem description, write the complete program that solves it and prints its result to stdout.
Respond with the Go source code only, no markdown fences, no prose.`

const reviseSystemPromptTemplate = `Your previous program was rejected by static validation for this reason:

%s

Revise the program to avoid that violation while still solving the original problem. Respond with
the complete corrected Go source code only, no markdown fences, no prose.`

const explainSystemPrompt = `You explain the result of running a Go program in plain natural language for
a non-programmer. Be concise. If the program failed, explain what went wrong in plain terms.`

// DefaultMaxRetries is the bounded retry count §4.4 describes as "a small
// bounded count" for the validate/revise loop.
const DefaultMaxRetries = 3

// Pipeline implements the Code strategy: generate, validate/revise,
// execute, explain.
type Pipeline struct {
	executor   *sandbox.SandboxExecutor
	validator  *sandbox.Validator
	completer  Completer
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewPipeline builds a code Pipeline. maxRetries <= 0 uses DefaultMaxRetries.
func NewPipeline(executor *sandbox.SandboxExecutor, completer Completer, model string, maxRetries int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Pipeline{
		executor:   executor,
		validator:  sandbox.NewValidator(sandbox.DefaultImportPolicy()),
		completer:  completer,
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Solve runs the full Code strategy pipeline for problem and always
// returns a *types.CodeResult, even on failure — per §4.4's failure
// semantics, the strategy returns rather than throws.
func (p *Pipeline) Solve(ctx context.Context, problem string) (*types.CodeResult, error) {
	code, err := p.completer.Complete(ctx, generateSystemPrompt, problem, 0.2)
	if err != nil {
		return &types.CodeResult{Problem: problem, Success: false, Stderr: fmt.Sprintf("code generation failed: %v", err)}, nil
	}
	code = stripFences(code)

	code, violationSummary, ok := p.validateWithRetries(ctx, problem, code)
	if !ok {
		return &types.CodeResult{
			Problem: problem,
			Code:    code,
			Success: false,
			Stderr:  "static validation rejected every attempt: " + violationSummary,
		}, nil
	}

	result, err := p.executor.Execute(ctx, &sandbox.ExecutionRequest{Language: sandbox.LangGo, Code: code})
	if err != nil {
		return &types.CodeResult{Problem: problem, Code: code, Success: false, Stderr: err.Error()}, nil
	}

	explanation := p.explain(ctx, problem, code, result)

	return &types.CodeResult{
		Problem:     problem,
		Code:        code,
		Stdout:      result.Stdout,
		Stderr:      result.Stderr,
		Success:     result.Success,
		Explanation: explanation,
		Truncated:   result.Truncated,
	}, nil
}

// validateWithRetries runs the Layer-1 validator, asking the LLM to revise
// the program up to p.maxRetries times when it's rejected. Returns the last
// attempted code, the final violation summary (if any), and whether a
// clean program was produced.
func (p *Pipeline) validateWithRetries(ctx context.Context, problem, code string) (string, string, bool) {
	var lastSummary string
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		violations, err := p.validator.Validate(code)
		if err == nil && len(violations) == 0 {
			return code, "", true
		}

		lastSummary = violationMessage(violations, err)
		if attempt == p.maxRetries {
			break
		}

		p.logger.Warn("code validation rejected, asking LLM to revise",
			zap.Int("attempt", attempt), zap.String("reason", lastSummary))

		revised, revErr := p.completer.Complete(ctx, fmt.Sprintf(reviseSystemPromptTemplate, lastSummary), problem, 0.2)
		if revErr != nil {
			break
		}
		code = stripFences(revised)
	}
	return code, lastSummary, false
}

func violationMessage(violations []sandbox.Violation, err error) string {
	if err != nil {
		return err.Error()
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// explain asks the LLM to describe the execution result in plain language.
// A failure here never fails the strategy: it just leaves Explanation empty.
func (p *Pipeline) explain(ctx context.Context, problem, code string, result *sandbox.ExecutionResult) string {
	var b strings.Builder
	b.WriteString("Problem: ")
	b.WriteString(problem)
	b.WriteString("\n\nProgram:\n")
	b.WriteString(code)
	b.WriteString("\n\nExecution result:\n")
	fmt.Fprintf(&b, "success=%v exit_code=%d\nstdout:\n%s\nstderr:\n%s", result.Success, result.ExitCode, result.Stdout, result.Stderr)

	explanation, err := p.completer.Complete(ctx, explainSystemPrompt, b.String(), 0.3)
	if err != nil {
		p.logger.Warn("code explanation call failed", zap.Error(err))
		return ""
	}
	return explanation
}

// stripFences removes a leading/trailing ```go or ``` markdown fence, in
// case the model adds one despite instructions not to.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	s = trimmed
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
