package execute

import "time"

// Report describes what a run did.
type Report struct {
	RunID      string
	AppName    string
	StartedAt  time.Time
	FinishedAt time.Time

	// Completed is true when every checkpoint ran.
	Completed   bool
	Checkpoints []CheckpointReport
	Warnings    []Warning
}

// CheckpointReport is the outcome of one checkpoint.
type CheckpointReport struct {
	Name      string
	Message   string
	Applied   int
	Committed bool
	Duration  time.Duration
}

// Warning is a non-fatal problem: a best-effort command that failed, or an
// optional edit whose anchor or file was missing.
type Warning struct {
	Checkpoint string
	Operation  string
	Message    string
	// Output is the command output, kept for commands that report it.
	Output string
}

// Commits returns the number of checkpoints that produced a commit.
func (r *Report) Commits() int {
	n := 0

	for i := range r.Checkpoints {
		if r.Checkpoints[i].Committed {
			n++
		}
	}

	return n
}
