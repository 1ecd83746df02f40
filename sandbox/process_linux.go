//go:build linux

package sandbox

import (
	"os/exec"
	"syscall"
)

// applyResourceLimits puts the sandboxrunner child in its own process
// group, so a timeout-triggered kill reaches any descendants it spawns,
// and has the kernel SIGKILL it if the parent process dies.
func applyResourceLimits(cmd *exec.Cmd, cfg SandboxConfig) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
	// On context cancellation, kill the whole process group rather than
	// only the runner's own pid.
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
