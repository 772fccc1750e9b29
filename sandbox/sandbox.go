// Package sandbox runs untrusted generated code in an isolated, resource
// bounded child process. Every invocation gets a fresh scratch directory that
// is removed on every exit path, a wall-clock timeout, a memory ceiling and an
// output-size ceiling. On Linux the child is additionally detached into fresh
// user, network and mount namespaces when the kernel permits unprivileged
// namespaces, falling back to the host namespaces with a logged warning.
// Limit violations terminate the run and are reported as termination reasons,
// never as generation-pipeline errors.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/logging"
)

// Limits bound one sandboxed run.
type Limits struct {
	WallTime    time.Duration
	MemoryBytes int64
	OutputBytes int64
}

// DefaultLimits are 30s wall clock, 256 MiB of address space and 64 KiB of
// combined output.
func DefaultLimits() Limits {
	return Limits{
		WallTime:    30 * time.Second,
		MemoryBytes: 256 << 20,
		OutputBytes: 64 << 10,
	}
}

// Options configure the sandbox.
type Options struct {
	Limits Limits
	// WorkRoot is the parent directory for per-run scratch directories.
	// Empty means the system temp directory.
	WorkRoot string
	Logger   logging.Logger
}

// Sandbox executes code snippets in isolated child processes.
type Sandbox struct {
	opts Options
}

// New creates a sandbox with default limits.
func New(optFns ...func(o *Options)) *Sandbox {
	opts := Options{
		Limits: DefaultLimits(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Sandbox{opts: opts}
}

type runner struct {
	filename    string
	interpreter string
}

var runners = map[string]runner{
	"python":     {filename: "main.py", interpreter: "python3"},
	"javascript": {filename: "main.js", interpreter: "node"},
}

// Execute runs code in a fresh scratch directory under the configured limits.
// The returned error covers setup faults only (unsupported language, scratch
// directory failure, missing interpreter); everything the child process does,
// including crashing or violating a limit, is reported in the result.
func (s *Sandbox) Execute(ctx context.Context, code, language string) (core.ExecutionResult, error) {
	run, ok := runners[normalizeLanguage(language)]
	if !ok {
		return core.ExecutionResult{}, fmt.Errorf("%w: %s", core.ErrUnsupportedLanguage, language)
	}

	scratch, err := os.MkdirTemp(s.opts.WorkRoot, "codesmith-run-")
	if err != nil {
		return core.ExecutionResult{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	file := filepath.Join(scratch, run.filename)
	if err := os.WriteFile(file, []byte(code), 0o600); err != nil {
		return core.ExecutionResult{}, fmt.Errorf("write source file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.opts.Limits.WallTime)
	defer cancel()

	// The shell applies the address-space ceiling before exec'ing the
	// interpreter, so the limit covers the interpreter itself.
	script := fmt.Sprintf("ulimit -v %d; exec %s %s", s.opts.Limits.MemoryBytes/1024, run.interpreter, run.filename)

	result, isolated, runErr := s.run(runCtx, scratch, script)
	if runErr != nil && isolated && runCtx.Err() == nil {
		// Kernels without unprivileged user namespaces refuse the clone
		// outright; rerun on the host namespaces.
		s.opts.Logger.Warn("namespace isolation unavailable, running without it", "error", runErr)
		result, isolated, runErr = s.runPlain(runCtx, scratch, script)
	}
	if runErr != nil {
		return core.ExecutionResult{}, fmt.Errorf("start sandboxed process: %w", runErr)
	}

	s.opts.Logger.Info("sandbox run finished",
		"language", language,
		"wall_time", result.WallTime,
		"termination_reason", result.TerminationReason.String(),
		"exit_code", result.ExitCode,
		"isolated", isolated,
	)
	return result, nil
}

// run executes the wrapped script in scratch, detached into fresh namespaces
// where the platform supports it. The returned error covers process-start
// faults only.
func (s *Sandbox) run(runCtx context.Context, scratch, script string) (core.ExecutionResult, bool, error) {
	attr := &syscall.SysProcAttr{Setpgid: true}
	isolated := namespaceAttr(attr)
	return s.runWith(runCtx, scratch, script, attr, isolated)
}

// runPlain executes on the host namespaces with only the rlimit and
// process-group boundaries.
func (s *Sandbox) runPlain(runCtx context.Context, scratch, script string) (core.ExecutionResult, bool, error) {
	return s.runWith(runCtx, scratch, script, &syscall.SysProcAttr{Setpgid: true}, false)
}

func (s *Sandbox) runWith(runCtx context.Context, scratch, script string, attr *syscall.SysProcAttr, isolated bool) (core.ExecutionResult, bool, error) {
	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", script)
	cmd.Dir = scratch
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + scratch,
		"TMPDIR=" + scratch,
		"LANG=C.UTF-8",
	}
	cmd.SysProcAttr = attr
	// Hard-kill the whole process group on cancellation so grandchildren
	// cannot outlive the run.
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 2 * time.Second

	stdout := newLimitWriter(s.opts.Limits.OutputBytes)
	stderr := newLimitWriter(s.opts.Limits.OutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	wall := time.Since(start)

	result := s.classify(runCtx, runErr, wall, stdout.Output(), stderr.Output())
	if result.TerminationReason == TerminationStartFailure {
		return core.ExecutionResult{}, isolated, runErr
	}
	return result, isolated, nil
}

// TerminationStartFailure is an internal marker for process-start faults that
// surface as errors, never in a result.
const TerminationStartFailure core.TerminationReason = -1

func (s *Sandbox) classify(runCtx context.Context, runErr error, wall time.Duration, stdout, stderr string) core.ExecutionResult {
	result := core.ExecutionResult{
		Stdout:            stdout,
		Stderr:            stderr,
		WallTime:          wall,
		TerminationReason: core.TerminationNormal,
	}

	switch {
	// Caller cancellation arrives as deadline-zero and is reported the same
	// way as the wall-clock ceiling firing.
	case runCtx.Err() != nil:
		result.ExitCode = -1
		result.TerminationReason = core.TerminationTimeout

	case runErr == nil:
		result.Success = true

	default:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			result.TerminationReason = TerminationStartFailure
			return result
		}
		ws, ok := exitErr.Sys().(syscall.WaitStatus)
		if ok && ws.Signaled() {
			result.ExitCode = -1
			result.Signal = ws.Signal().String()
			if ws.Signal() == syscall.SIGKILL {
				result.TerminationReason = core.TerminationResourceLimit
			} else {
				result.TerminationReason = core.TerminationRuntimeError
			}
			return result
		}
		result.ExitCode = exitErr.ExitCode()
		if memoryExhausted(stderr) {
			result.TerminationReason = core.TerminationResourceLimit
		}
		// Otherwise a nonzero exit is a normal termination of incorrect
		// code, not a sandbox fault.
	}
	return result
}

// memoryExhausted recognizes interpreters that report the address-space
// ceiling as a runtime error instead of dying from a signal.
func memoryExhausted(stderr string) bool {
	for _, marker := range []string{
		"MemoryError",
		"heap out of memory",
		"Cannot allocate memory",
	} {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

func normalizeLanguage(language string) string {
	switch strings.ToLower(language) {
	case "py", "python", "python3":
		return "python"
	case "js", "node", "nodejs", "javascript":
		return "javascript"
	default:
		return strings.ToLower(language)
	}
}
