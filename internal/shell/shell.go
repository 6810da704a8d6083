// Package shell runs external commands in the generated project.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Result is the outcome of a command that started.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output returns stdout and stderr joined, trimmed.
func (r Result) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stdout) + "\n" + strings.TrimSpace(r.Stderr))
}

// Runner executes argv in dir. A non-zero exit is reported in the Result, not
// as an error; the error is for commands that could not run at all.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) (Result, error)
}

// Func adapts a function to Runner.
type Func func(ctx context.Context, dir string, argv []string) (Result, error)

// Run implements Runner.
func (f Func) Run(ctx context.Context, dir string, argv []string) (Result, error) {
	return f(ctx, dir, argv)
}

// Exec runs commands with os/exec. Output is captured and, when Stdout or
// Stderr are set, streamed there as well.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
	// Env is appended to the inherited environment.
	Env    []string
	Logger *slog.Logger
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, dir string, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty command")
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = tee(&stdout, e.Stdout)
	cmd.Stderr = tee(&stderr, e.Stderr)

	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}

	logger.Debug("running command", "cmd", strings.Join(argv, " "), "dir", dir)

	err := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("running %s: %w", argv[0], ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	if err != nil {
		return res, fmt.Errorf("running %s: %w", argv[0], err)
	}

	return res, nil
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}

	return io.MultiWriter(buf, w)
}
