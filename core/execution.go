package core

import "time"

// TerminationReason classifies how a sandboxed run ended. Limit violations are
// execution outcomes, never generation-pipeline errors; the two failure
// domains are reported separately.
type TerminationReason int

const (
	// TerminationNormal indicates the process exited on its own. A nonzero
	// exit with stderr is still a normal termination of incorrect code.
	TerminationNormal TerminationReason = iota
	// TerminationTimeout indicates the wall-clock ceiling fired.
	TerminationTimeout
	// TerminationResourceLimit indicates a memory or output ceiling was hit.
	TerminationResourceLimit
	// TerminationRuntimeError indicates the process died from an external
	// signal (crash) rather than a limit or its own exit.
	TerminationRuntimeError
)

// String returns the string representation of the termination reason.
func (t TerminationReason) String() string {
	switch t {
	case TerminationNormal:
		return "normal"
	case TerminationTimeout:
		return "timeout"
	case TerminationResourceLimit:
		return "resource_limit"
	case TerminationRuntimeError:
		return "runtime_error"
	default:
		return "unknown"
	}
}

// ExecutionResult reports the outcome of one sandboxed run.
type ExecutionResult struct {
	Success           bool              `json:"success"`
	Stdout            string            `json:"stdout"`
	Stderr            string            `json:"stderr"`
	ExitCode          int               `json:"exit_code"`
	Signal            string            `json:"signal,omitempty"`
	WallTime          time.Duration     `json:"wall_time"`
	TerminationReason TerminationReason `json:"termination_reason"`
}
