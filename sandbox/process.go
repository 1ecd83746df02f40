package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// ProcessBackend is Layer 3's fallback for deployments with no container
// runtime: it runs cmd/sandboxrunner as a plain subprocess. It loses the
// container's network and filesystem isolation but keeps the wall-clock
// cap (via ctx) and gives the interpreted program its own process and
// address space rather than sharing the host's.
type ProcessBackend struct {
	runnerPath string
	logger     *zap.Logger
}

// NewProcessBackend builds a subprocess backend. runnerPath is the path to
// a prebuilt cmd/sandboxrunner binary.
func NewProcessBackend(runnerPath string, logger *zap.Logger) *ProcessBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessBackend{runnerPath: runnerPath, logger: logger}
}

func (p *ProcessBackend) Name() string { return "process" }

func (p *ProcessBackend) Execute(ctx context.Context, req *ExecutionRequest, cfg SandboxConfig) (*ExecutionResult, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal execution request: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "sandboxreq-*")
	if err != nil {
		return nil, fmt.Errorf("create request staging dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	reqPath := filepath.Join(tmpDir, "request.json")
	if err := os.WriteFile(reqPath, reqJSON, 0o400); err != nil {
		return nil, fmt.Errorf("stage request file: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.runnerPath, reqPath)
	cmd.Env = []string{} // no inherited environment
	applyResourceLimits(cmd, cfg)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	var result ExecutionResult
	if jsonErr := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &result); jsonErr == nil {
		return &result, nil
	}

	// The runner never got far enough to print a result (e.g. binary
	// missing, killed for exceeding a cgroup limit). Surface what we
	// captured rather than failing the strategy outright.
	res := &ExecutionResult{ID: req.ID, Success: false}
	if ctx.Err() != nil {
		res.Error = "execution timed out"
	} else if runErr != nil {
		res.Error = runErr.Error()
	}
	res.Stderr = stderr.String()
	return res, nil
}

func (p *ProcessBackend) Cleanup() error { return nil }
