// Package executor runs external commands and captures their results.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandFailed is the error kind for an external command that exited non-zero
// or could not be started.
var ErrCommandFailed = errors.New("external command failed")

// Result is the captured outcome of one external command.
type Result struct {
	Command  string        `yaml:"command"`
	Args     []string      `yaml:"args,omitempty"`
	ExitCode int           `yaml:"exit_code"`
	Stdout   string        `yaml:"stdout,omitempty"`
	Stderr   string        `yaml:"stderr,omitempty"`
	Duration time.Duration `yaml:"duration"`
}

// Success returns true if the command exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CommandLine returns the command and its arguments joined by spaces.
func (r Result) CommandLine() string {
	if len(r.Args) == 0 {
		return r.Command
	}
	return r.Command + " " + strings.Join(r.Args, " ")
}

// Diagnostic returns the most useful captured output for an error message.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// CommandError wraps a failed Result. It unwraps to ErrCommandFailed.
type CommandError struct {
	Result Result
	Err    error
}

// NewCommandError creates a CommandError for a result.
func NewCommandError(result Result, err error) *CommandError {
	return &CommandError{Result: result, Err: err}
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Result.CommandLine(), e.Result.ExitCode)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Result.CommandLine(), e.Err)
	}
	if diag := e.Result.Diagnostic(); diag != "" {
		msg += "\nOutput: " + diag
	}
	return msg
}

// Unwrap returns ErrCommandFailed so callers can use errors.Is.
func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCommandFailed, e.Err}
	}
	return []error{ErrCommandFailed}
}

// Runner is an interface for executing commands, allowing for testing.
type Runner interface {
	// Run executes a command and captures its output. A non-zero exit is not an
	// error; check Result.Success. The error is reserved for commands that could
	// not be started at all.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// Interactive runs a command attached to the current terminal.
	Interactive(ctx context.Context, name string, args ...string) error

	// LookPath finds the path to an executable.
	LookPath(file string) (string, error)
}

// RealRunner is the default runner that uses the real system.
type RealRunner struct {
	// Env, when non-nil, replaces the process environment for spawned commands.
	Env []string
}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes a command and returns the result.
func (r *RealRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := Result{
		Command:  name,
		Args:     args,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, err
	}

	return result, nil
}

// Interactive runs a command with stdin, stdout and stderr attached to the process.
func (r *RealRunner) Interactive(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		result := Result{Command: name, Args: args, ExitCode: -1}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return NewCommandError(result, nil)
		}
		return NewCommandError(result, err)
	}
	return nil
}

// LookPath finds the path to an executable.
func (r *RealRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Check runs a command and converts a non-zero exit into a CommandError.
func Check(ctx context.Context, runner Runner, name string, args ...string) (Result, error) {
	result, err := runner.Run(ctx, name, args...)
	if err != nil {
		return result, NewCommandError(result, err)
	}
	if !result.Success() {
		return result, NewCommandError(result, nil)
	}
	return result, nil
}

// Ensure RealRunner implements Runner.
var _ Runner = (*RealRunner)(nil)
