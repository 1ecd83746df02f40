package code

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentflow/sandbox"
)

// localBackend mirrors sandbox's own test double, running RunInProcess
// directly so these tests don't need Docker or a subprocess binary.
type localBackend struct{ policy sandbox.ImportPolicy }

func (b *localBackend) Name() string   { return "local" }
func (b *localBackend) Cleanup() error { return nil }
func (b *localBackend) Execute(ctx context.Context, req *sandbox.ExecutionRequest, cfg sandbox.SandboxConfig) (*sandbox.ExecutionResult, error) {
	return sandbox.RunInProcess(ctx, req, b.policy), nil
}

func newTestExecutor() *sandbox.SandboxExecutor {
	cfg := sandbox.DefaultSandboxConfig()
	return sandbox.NewSandboxExecutor(cfg, &localBackend{policy: sandbox.DefaultImportPolicy()}, zap.NewNop())
}

type scriptedCompleter struct {
	responses []string
	i         int
	calls     []string // systemPrompt of each call, for assertions
}

func (s *scriptedCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	s.calls = append(s.calls, systemPrompt)
	if s.i >= len(s.responses) {
		return s.responses[len(s.responses)-1], nil
	}
	r := s.responses[s.i]
	s.i++
	return r, nil
}

const validProgram = "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}\n"
const disallowedProgram = "package main\n\nimport \"os\"\n\nfunc main() {\n\tos.Exit(1)\n}\n"

func TestPipeline_HappyPath(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{validProgram, "the program printed hello"}}
	p := NewPipeline(newTestExecutor(), completer, "", 3, zap.NewNop())

	result, err := p.Solve(context.Background(), "print hello")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Stdout, "hello")
	assert.Equal(t, "the program printed hello", result.Explanation)
}

func TestPipeline_StripsMarkdownFences(t *testing.T) {
	fenced := "```go\n" + validProgram + "```"
	completer := &scriptedCompleter{responses: []string{fenced, "explained"}}
	p := NewPipeline(newTestExecutor(), completer, "", 3, zap.NewNop())

	result, err := p.Solve(context.Background(), "print hello")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestPipeline_RevisesOnValidationRejection(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{disallowedProgram, validProgram, "explained"}}
	p := NewPipeline(newTestExecutor(), completer, "", 3, zap.NewNop())

	result, err := p.Solve(context.Background(), "print hello")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, validProgram, result.Code)
	require.Len(t, completer.calls, 3)
	assert.Contains(t, completer.calls[1], "rejected by static validation")
}

func TestPipeline_GivesUpAfterMaxRetries(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{disallowedProgram}}
	p := NewPipeline(newTestExecutor(), completer, "", 2, zap.NewNop())

	result, err := p.Solve(context.Background(), "print hello")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Stderr, "static validation rejected every attempt")
}

func TestPipeline_RuntimeFailureStillReturnsResult(t *testing.T) {
	cfg := sandbox.DefaultSandboxConfig()
	cfg.Timeout = 50 * time.Millisecond
	exec := sandbox.NewSandboxExecutor(cfg, &localBackend{policy: sandbox.DefaultImportPolicy()}, zap.NewNop())

	infiniteLoop := "package main\n\nfunc main() {\n\tfor {}\n}\n"
	completer := &scriptedCompleter{responses: []string{infiniteLoop, "it timed out"}}
	p := NewPipeline(exec, completer, "", 3, zap.NewNop())

	result, err := p.Solve(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.False(t, result.Success)
}
