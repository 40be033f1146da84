package executor

import (
	"context"
	"os"
)

// SudoRunner prefixes commands with sudo when enabled. Only privileged actions
// (install, remove, repository changes) should go through it.
type SudoRunner struct {
	Runner
	Enabled bool
}

// NewSudoRunner wraps runner. Sudo is used only when enabled and the process
// is not already running as root.
func NewSudoRunner(runner Runner, enabled bool) *SudoRunner {
	return &SudoRunner{
		Runner:  runner,
		Enabled: enabled && os.Geteuid() != 0,
	}
}

// Run executes the command, via sudo when enabled.
func (s *SudoRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if !s.Enabled {
		return s.Runner.Run(ctx, name, args...)
	}
	return s.Runner.Run(ctx, "sudo", append([]string{name}, args...)...)
}
