package execute

import (
	"fmt"
	"strings"
)

// PlanAbortedError reports the operation that stopped a run. Checkpoints
// before Checkpoint are committed; nothing is rolled back.
type PlanAbortedError struct {
	Checkpoint string
	// Index is the operation's position in the checkpoint, or the operation
	// count when the commit itself failed.
	Index     int
	Operation string
	Cause     error
}

func (e *PlanAbortedError) Error() string {
	return fmt.Sprintf("plan aborted at checkpoint %s, operation %d (%s): %v",
		e.Checkpoint, e.Index+1, e.Operation, e.Cause)
}

func (e *PlanAbortedError) Unwrap() error {
	return e.Cause
}

// ShellFailureError is a command that exited non-zero.
type ShellFailureError struct {
	Argv     []string
	ExitCode int
	Output   string
}

func (e *ShellFailureError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", strings.Join(e.Argv, " "), e.ExitCode)
	if e.Output != "" {
		msg += ": " + lastLines(e.Output, 5)
	}

	return msg
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.Join(lines, "\n")
}
