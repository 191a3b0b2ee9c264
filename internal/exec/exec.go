// Package exec provides subprocess execution with timeouts, output capture,
// and benign-failure reclassification. It has no git-specific knowledge;
// higher layers build git and gh operations on top of it.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhubert/ghsync/internal/logger"
)

// DefaultTimeout bounds a single command when Spec.Timeout is zero.
const DefaultTimeout = 120 * time.Second

// TimeoutExitCode is the sentinel exit code reported when a command is
// killed for exceeding its timeout.
const TimeoutExitCode = -1

// auditOutputLimit caps how much command output is attached to audit events.
const auditOutputLimit = 2000

// Spec describes a single command invocation. Construct a fresh value per
// call; specs are never reused or mutated.
type Spec struct {
	Dir     string
	Name    string
	Args    []string
	Timeout time.Duration

	// SuccessOverrides lists substrings that, when present in stdout or
	// stderr of a command that exited nonzero, reclassify the result as
	// success. Some git operations report failure for conditions callers
	// consider benign (e.g. removing an already-removed worktree).
	SuccessOverrides []string

	// WorkspaceID and Kind key the audit event emitted for this command.
	// Both are optional; empty values suppress auditing.
	WorkspaceID string
	Kind        string
}

// Result holds the outcome of a completed, killed, or failed-to-spawn
// command. It is created once and never mutated afterwards.
type Result struct {
	Stdout           []byte
	Stderr           []byte
	ExitCode         int
	OriginalExitCode int
	TreatedAsSuccess bool
	TimedOut         bool
	Duration         time.Duration
	Err              error
}

// Success reports whether the command is classified as successful,
// including nonzero exits reclassified by a success override.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CommandExecutor abstracts command execution so tests can substitute a
// mock without spawning processes.
type CommandExecutor interface {
	// Execute runs the command described by spec and returns its result.
	// It never returns an error; failures are encoded in the Result.
	Execute(ctx context.Context, spec Spec) Result

	// Output runs the command and returns stdout, or an error on
	// nonzero exit carrying stderr context.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// CombinedOutput runs the command and returns stdout+stderr.
	CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// Run runs the command and returns only its error.
	Run(ctx context.Context, dir, name string, args ...string) error
}

// AuditEvent describes a completed command for the audit trail.
type AuditEvent struct {
	CorrelationID string
	WorkspaceID   string
	Kind          string
	Status        string // "finished" or "failed"
	Command       string
	Duration      time.Duration
	ExitCode      int
	Output        string
}

// Auditor receives command audit events. Recording is best-effort;
// implementations must never fail the calling operation.
type Auditor interface {
	Record(event AuditEvent)
}

// RealExecutor executes commands using os/exec.
type RealExecutor struct {
	auditor Auditor
}

// NewRealExecutor creates an executor that spawns real processes.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{}
}

// NewRealExecutorWithAuditor creates an executor that emits audit events
// for commands carrying a workspace id.
func NewRealExecutorWithAuditor(a Auditor) *RealExecutor {
	return &RealExecutor{auditor: a}
}

// Execute runs the command, enforcing the timeout with a hard kill.
func (e *RealExecutor) Execute(ctx context.Context, spec Spec) Result {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := osexec.CommandContext(cctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		switch {
		case cctx.Err() == context.DeadlineExceeded:
			res.TimedOut = true
			res.ExitCode = TimeoutExitCode
			res.Err = fmt.Errorf("%s timed out after %s", spec.Name, timeout)
		default:
			var exitErr *osexec.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitCode()
				res.Err = err
			} else {
				// Spawn failure: binary missing or not executable.
				res.ExitCode = 1
				res.Err = err
			}
		}
	}

	classify(&res, spec.SuccessOverrides)

	log := logger.WithComponent("exec")
	if res.Success() {
		log.Debug("command finished", "command", spec.Name, "args", strings.Join(spec.Args, " "), "duration", res.Duration)
	} else {
		log.Debug("command failed", "command", spec.Name, "args", strings.Join(spec.Args, " "), "exitCode", res.ExitCode, "stderr", truncate(string(res.Stderr), auditOutputLimit))
	}

	e.audit(spec, res)
	return res
}

// Output runs the command and returns stdout.
func (e *RealExecutor) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	res := e.Execute(ctx, Spec{Dir: dir, Name: name, Args: args})
	if !res.Success() {
		return res.Stdout, resultError(name, res)
	}
	return res.Stdout, nil
}

// CombinedOutput runs the command and returns stdout followed by stderr.
func (e *RealExecutor) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	res := e.Execute(ctx, Spec{Dir: dir, Name: name, Args: args})
	combined := append(res.Stdout, res.Stderr...)
	if !res.Success() {
		return combined, resultError(name, res)
	}
	return combined, nil
}

// Run runs the command discarding output.
func (e *RealExecutor) Run(ctx context.Context, dir, name string, args ...string) error {
	res := e.Execute(ctx, Spec{Dir: dir, Name: name, Args: args})
	if !res.Success() {
		return resultError(name, res)
	}
	return nil
}

func (e *RealExecutor) audit(spec Spec, res Result) {
	if e.auditor == nil || spec.WorkspaceID == "" {
		return
	}

	status := "finished"
	output := string(res.Stdout)
	if !res.Success() {
		status = "failed"
		output = string(res.Stderr)
	}

	e.auditor.Record(AuditEvent{
		CorrelationID: uuid.NewString(),
		WorkspaceID:   spec.WorkspaceID,
		Kind:          spec.Kind,
		Status:        status,
		Command:       commandLine(spec),
		Duration:      res.Duration,
		ExitCode:      res.ExitCode,
		Output:        truncate(output, auditOutputLimit),
	})
}

// classify applies the success-override policy: a nonzero exit whose
// stdout or stderr contains a listed substring becomes exit 0, with the
// original code preserved for diagnostics. Timeouts are never overridden.
func classify(res *Result, overrides []string) {
	if res.ExitCode == 0 || res.TimedOut || len(overrides) == 0 {
		return
	}

	combined := string(res.Stdout) + string(res.Stderr)
	for _, substr := range overrides {
		if substr != "" && strings.Contains(combined, substr) {
			res.OriginalExitCode = res.ExitCode
			res.ExitCode = 0
			res.TreatedAsSuccess = true
			res.Err = nil
			return
		}
	}
}

func resultError(name string, res Result) error {
	stderr := strings.TrimSpace(string(res.Stderr))
	if res.Err != nil {
		if stderr != "" {
			return fmt.Errorf("%s: %w: %s", name, res.Err, stderr)
		}
		return fmt.Errorf("%s: %w", name, res.Err)
	}
	if stderr != "" {
		return fmt.Errorf("%s exited with code %d: %s", name, res.ExitCode, stderr)
	}
	return fmt.Errorf("%s exited with code %d", name, res.ExitCode)
}

func commandLine(spec Spec) string {
	if len(spec.Args) == 0 {
		return spec.Name
	}
	return spec.Name + " " + strings.Join(spec.Args, " ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "... (truncated)"
}
