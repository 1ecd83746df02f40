package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// restrictedSymbols returns the subset of yaegi's stdlib symbol table
// matching policy.Allowed, so Layer 2 cannot resolve a symbol Layer 1's
// import walk would have rejected even if a caller skips straight to
// interpretation in a test.
func restrictedSymbols(policy ImportPolicy) interp.Exports {
	restricted := make(interp.Exports, len(policy.Allowed)+1)
	restricted["fmt/fmt"] = stdlib.Symbols["fmt/fmt"]
	for path := range policy.Allowed {
		pkgKey := path + "/" + lastSegment(path)
		if syms, ok := stdlib.Symbols[pkgKey]; ok {
			restricted[pkgKey] = syms
		}
	}
	return restricted
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// Interpreter is the sandbox's Layer 2: it compiles and runs source in a
// yaegi interpreter loaded with only the whitelisted stdlib symbols, so a
// program cannot reach os, net, exec, or unsafe even if Layer 1's AST walk
// somehow missed a path to them. The interpreter's own Stdin/Stdout/Stderr
// are wired to in-memory buffers rather than the host process's, so an
// interpreted program's os.Stdout reference never reaches the real one.
type Interpreter struct {
	policy ImportPolicy
}

// NewInterpreter builds a Layer 2 interpreter restricted to policy.
func NewInterpreter(policy ImportPolicy) *Interpreter {
	return &Interpreter{policy: policy}
}

// Run evaluates src, a self-contained `package main` program, with stdin
// fed the given text, and returns everything it wrote to stdout and
// stderr. Execution is bound by ctx; a cancelled context aborts the wait
// but does not kill a runaway interpreted goroutine — that containment is
// Layer 3's job.
func (in *Interpreter) Run(ctx context.Context, src, stdin string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer

	i := interp.New(interp.Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: &outBuf,
		Stderr: &errBuf,
	})
	if useErr := i.Use(restrictedSymbols(in.policy)); useErr != nil {
		return "", "", fmt.Errorf("load restricted symbol table: %w", useErr)
	}

	doneCh := make(chan error, 1)
	go func() {
		_, evalErr := i.Eval(src)
		doneCh <- evalErr
	}()

	select {
	case evalErr := <-doneCh:
		if evalErr != nil {
			return outBuf.String(), errBuf.String(), fmt.Errorf("program error: %w", evalErr)
		}
		return outBuf.String(), errBuf.String(), nil
	case <-ctx.Done():
		return outBuf.String(), errBuf.String(), ctx.Err()
	}
}
