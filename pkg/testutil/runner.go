// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
)

// Call records a command invocation.
type Call struct {
	Command     string
	Args        []string
	Interactive bool
}

// String returns the call as a single command line.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// MockRunner is a test double for executor.Runner. Commands without a
// registered result succeed with empty output.
type MockRunner struct {
	mu      sync.Mutex
	results map[string]executor.Result
	errors  map[string]error
	calls   []Call

	// InteractiveFunc overrides Interactive when set.
	InteractiveFunc func(name string, args ...string) error
	// LookPathFunc overrides LookPath when set.
	LookPathFunc func(file string) (string, error)
}

// NewMockRunner creates a new MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		results: make(map[string]executor.Result),
		errors:  make(map[string]error),
	}
}

// AddResult registers the result for a command line.
func (m *MockRunner) AddResult(command string, args []string, result executor.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddOutput registers a successful result with the given stdout.
func (m *MockRunner) AddOutput(command string, args []string, stdout string) {
	m.AddResult(command, args, executor.Result{Stdout: stdout})
}

// AddFailure registers a non-zero exit with the given stderr.
func (m *MockRunner) AddFailure(command string, args []string, exitCode int, stderr string) {
	m.AddResult(command, args, executor.Result{ExitCode: exitCode, Stderr: stderr})
}

// AddError registers a command that cannot be started.
func (m *MockRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// Run records the call and returns the registered result.
func (m *MockRunner) Run(_ context.Context, name string, args ...string) (executor.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Command: name, Args: args})
	key := buildKey(name, args)

	if err, ok := m.errors[key]; ok {
		return executor.Result{Command: name, Args: args, ExitCode: -1}, err
	}

	result := m.results[key]
	result.Command = name
	result.Args = args
	return result, nil
}

// Interactive records the call and delegates to InteractiveFunc.
func (m *MockRunner) Interactive(_ context.Context, name string, args ...string) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Command: name, Args: args, Interactive: true})
	fn := m.InteractiveFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(name, args...)
	}
	return nil
}

// LookPath delegates to LookPathFunc, defaulting to /usr/bin/<file>.
func (m *MockRunner) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// Calls returns a copy of all recorded invocations.
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CommandLines returns all recorded invocations as command lines.
func (m *MockRunner) CommandLines() []string {
	calls := m.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Called reports whether the exact command line was invoked.
func (m *MockRunner) Called(command string, args ...string) bool {
	want := buildKey(command, args)
	for _, c := range m.Calls() {
		if buildKey(c.Command, c.Args) == want {
			return true
		}
	}
	return false
}

func buildKey(command string, args []string) string {
	return command + " " + strings.Join(args, " ")
}

var _ executor.Runner = (*MockRunner)(nil)
