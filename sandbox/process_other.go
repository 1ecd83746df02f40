//go:build !linux

package sandbox

import "os/exec"

// applyResourceLimits is a no-op outside Linux; process-group and
// cgroup-style containment there is host-specific and the container
// backend is the supported path for production deployments.
func applyResourceLimits(cmd *exec.Cmd, cfg SandboxConfig) {}
