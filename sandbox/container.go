package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/container"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// ContainerBackend is the sandbox's preferred Layer 3: it runs
// cmd/sandboxrunner inside an ephemeral, network-disabled, read-only
// container built from sandbox/docker/Dockerfile, enforcing the memory,
// CPU, and wall-clock caps the host process itself cannot (an interpreted
// program's allocations and goroutines are still the host's, in-process).
type ContainerBackend struct {
	buildContext string
	logger       *zap.Logger
}

// NewContainerBackend builds a container backend. buildContext is the
// module root containing go.mod and sandbox/docker/Dockerfile.
func NewContainerBackend(buildContext string, logger *zap.Logger) *ContainerBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContainerBackend{buildContext: buildContext, logger: logger}
}

func (c *ContainerBackend) Name() string { return "container" }

func (c *ContainerBackend) Execute(ctx context.Context, req *ExecutionRequest, cfg SandboxConfig) (*ExecutionResult, error) {
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

	memBytes := int64(cfg.MaxMemoryMB) * 1024 * 1024
	nanoCPUs := int64(cfg.MaxCPUPercent) * 10_000_000 // percent of one core, in nanocpus

	genericReq := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			FromDockerfile: testcontainers.FromDockerfile{
				Context:    c.buildContext,
				Dockerfile: "sandbox/docker/Dockerfile",
			},
			Files: []testcontainers.ContainerFile{{
				HostFilePath:      reqPath,
				ContainerFilePath: "/workspace/request.json",
				FileMode:          0o400,
			}},
			Cmd:         []string{"/workspace/request.json"},
			NetworkMode: container.NetworkMode("none"),
			Tmpfs:       map[string]string{"/tmp": "rw,noexec,size=16m"},
			WaitingFor:  wait.ForExit(),
			HostConfigModifier: func(hc *container.HostConfig) {
				hc.ReadonlyRootfs = true
				hc.Resources = container.Resources{
					Memory:   memBytes,
					NanoCPUs: nanoCPUs,
				}
			},
		},
		Started: true,
	}

	ctr, err := testcontainers.GenericContainer(ctx, genericReq)
	if ctr != nil {
		defer func() {
			if termErr := ctr.Terminate(context.Background()); termErr != nil {
				c.logger.Warn("failed to terminate sandbox container", zap.Error(termErr))
			}
		}()
	}
	if err != nil {
		return nil, fmt.Errorf("start sandbox container: %w", err)
	}

	logsReader, err := ctr.Logs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sandbox container logs: %w", err)
	}
	defer logsReader.Close()

	raw, err := io.ReadAll(logsReader)
	if err != nil {
		return nil, fmt.Errorf("drain sandbox container logs: %w", err)
	}

	var result ExecutionResult
	if err := json.Unmarshal(lastJSONLine(raw), &result); err != nil {
		return &ExecutionResult{
			ID:      req.ID,
			Success: false,
			Error:   fmt.Sprintf("sandbox runner produced no parseable result: %v", err),
			Stderr:  string(raw),
		}, nil
	}
	return &result, nil
}

func (c *ContainerBackend) Cleanup() error { return nil }

// lastJSONLine returns the final non-empty line of log output, since the
// runner's only stdout write is its trailing json.Marshal(result) call —
// any interleaved image-pull or build chatter precedes it.
func lastJSONLine(raw []byte) []byte {
	lines := splitLines(raw)
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			return lines[i]
		}
	}
	return raw
}

func splitLines(raw []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range raw {
		if b == '\n' {
			lines = append(lines, raw[start:i])
			start = i + 1
		}
	}
	lines = append(lines, raw[start:])
	return lines
}
