package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestContainerBackend_Execute builds the sandbox/docker image and runs a
// trivial program through it. It needs a working Docker daemon and a
// buildable module checkout: it is skipped under -short, and skips itself
// when the image build or container start fails.
func TestContainerBackend_Execute(t *testing.T) {
	if testing.Short() {
		t.Skip("container backend test requires Docker; skipped with -short")
	}

	backend := NewContainerBackend("..", zaptest.NewLogger(t))
	defer backend.Cleanup()

	cfg := DefaultSandboxConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := backend.Execute(ctx, &ExecutionRequest{
		ID:       "container-req-1",
		Language: LangGo,
		Code: `
package main

import "fmt"

func main() {
	fmt.Println("containerized")
}
`,
	}, cfg)
	if err != nil {
		t.Skipf("docker not available or image build failed: %v", err)
	}
	require.True(t, result.Success)
	require.Contains(t, result.Stdout, "containerized")
}
