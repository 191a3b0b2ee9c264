package exec

import (
	"context"
	"strings"
	"sync"
)

// MockResponse is the canned outcome for a matched command.
type MockResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Err      error
}

// MockCall records one command the mock received.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

type prefixRule struct {
	name   string
	prefix []string
	resp   MockResponse
}

// MockExecutor is a CommandExecutor for tests. Commands are matched
// against registered exact argv lists first, then against prefixes in
// registration order. Unmatched commands are delegated to the fallback
// executor, or fail if the fallback is nil.
type MockExecutor struct {
	mu       sync.Mutex
	exact    map[string]MockResponse
	prefixes []prefixRule
	calls    []MockCall
	fallback CommandExecutor
}

// NewMockExecutor creates a mock. A nil fallback makes unmatched
// commands return a nonzero result.
func NewMockExecutor(fallback CommandExecutor) *MockExecutor {
	return &MockExecutor{
		exact:    make(map[string]MockResponse),
		fallback: fallback,
	}
}

// AddExactMatch registers a response for an exact command line.
func (m *MockExecutor) AddExactMatch(name string, args []string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exact[mockKey(name, args)] = resp
}

// AddPrefixMatch registers a response for any command whose argv begins
// with the given prefix.
func (m *MockExecutor) AddPrefixMatch(name string, prefix []string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefixes = append(m.prefixes, prefixRule{name: name, prefix: prefix, resp: resp})
}

// Calls returns a copy of all commands the mock has received.
func (m *MockExecutor) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many commands the mock has received.
func (m *MockExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Execute returns the registered response for the command, applying the
// same success-override classification as the real executor.
func (m *MockExecutor) Execute(ctx context.Context, spec Spec) Result {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Dir: spec.Dir, Name: spec.Name, Args: spec.Args})
	resp, ok := m.lookup(spec.Name, spec.Args)
	m.mu.Unlock()

	if !ok {
		if m.fallback != nil {
			return m.fallback.Execute(ctx, spec)
		}
		return Result{
			ExitCode: 1,
			Stderr:   []byte("mock: no response registered for: " + commandLine(spec)),
			Err:      &unmatchedCommandError{command: commandLine(spec)},
		}
	}

	res := Result{
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		ExitCode: resp.ExitCode,
		Err:      resp.Err,
	}
	if resp.Err != nil && res.ExitCode == 0 {
		res.ExitCode = 1
	}

	classify(&res, spec.SuccessOverrides)
	return res
}

// Output mirrors RealExecutor.Output.
func (m *MockExecutor) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	res := m.Execute(ctx, Spec{Dir: dir, Name: name, Args: args})
	if !res.Success() {
		return res.Stdout, resultError(name, res)
	}
	return res.Stdout, nil
}

// CombinedOutput mirrors RealExecutor.CombinedOutput.
func (m *MockExecutor) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	res := m.Execute(ctx, Spec{Dir: dir, Name: name, Args: args})
	combined := append(res.Stdout, res.Stderr...)
	if !res.Success() {
		return combined, resultError(name, res)
	}
	return combined, nil
}

// Run mirrors RealExecutor.Run.
func (m *MockExecutor) Run(ctx context.Context, dir, name string, args ...string) error {
	res := m.Execute(ctx, Spec{Dir: dir, Name: name, Args: args})
	if !res.Success() {
		return resultError(name, res)
	}
	return nil
}

// lookup must be called with m.mu held.
func (m *MockExecutor) lookup(name string, args []string) (MockResponse, bool) {
	if resp, ok := m.exact[mockKey(name, args)]; ok {
		return resp, true
	}
	for _, rule := range m.prefixes {
		if rule.name != name || len(args) < len(rule.prefix) {
			continue
		}
		matched := true
		for i, p := range rule.prefix {
			if args[i] != p {
				matched = false
				break
			}
		}
		if matched {
			return rule.resp, true
		}
	}
	return MockResponse{}, false
}

func mockKey(name string, args []string) string {
	return name + "\x00" + strings.Join(args, "\x00")
}

type unmatchedCommandError struct {
	command string
}

func (e *unmatchedCommandError) Error() string {
	return "mock executor: no response registered for: " + e.command
}

var _ CommandExecutor = (*MockExecutor)(nil)
var _ CommandExecutor = (*RealExecutor)(nil)
