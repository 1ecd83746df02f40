package sandbox

import (
	"context"
	"strings"
)

// RunInProcess runs Layer 1 (AST validation) and, if it passes, Layer 2
// (restricted yaegi interpretation) against req in the calling process. It
// never returns an error: every failure mode is represented in the
// returned ExecutionResult, matching the strategy's "does not throw"
// failure semantics.
//
// cmd/sandboxrunner wraps this in a standalone binary so Layer 3 can run
// it inside a container or an isolated subprocess instead of in the host
// process that decided to execute the code.
func RunInProcess(ctx context.Context, req *ExecutionRequest, policy ImportPolicy) *ExecutionResult {
	result := &ExecutionResult{ID: req.ID}

	violations, err := NewValidator(policy).Validate(req.Code)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return result
	}
	if len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}
		result.Success = false
		result.Stderr = "sandbox layer 1 rejected submission:\n" + strings.Join(msgs, "\n")
		return result
	}

	stdout, stderr, runErr := NewInterpreter(policy).Run(ctx, req.Code, req.Stdin)
	result.Stdout = stdout
	result.Stderr = stderr
	if runErr != nil {
		if ctx.Err() != nil {
			result.Error = "execution timed out"
		} else {
			result.Error = runErr.Error()
		}
		result.Success = false
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}
