package shell_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/railsforge/internal/shell"
)

func TestExec_CapturesOutput(t *testing.T) {
	t.Parallel()

	var streamed bytes.Buffer

	e := &shell.Exec{Stdout: &streamed}

	res, err := e.Run(t.Context(), t.TempDir(), []string{"sh", "-c", "echo hello; echo oops >&2"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, "hello\n", streamed.String())
	assert.Equal(t, "hello\noops", res.Output())
}

func TestExec_WorkDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	res, err := (&shell.Exec{}).Run(t.Context(), dir, []string{"pwd"})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}

func TestExec_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	res, err := (&shell.Exec{}).Run(t.Context(), t.TempDir(), []string{"sh", "-c", "exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExec_Env(t *testing.T) {
	t.Parallel()

	e := &shell.Exec{Env: []string{"RAILSFORGE_TEST=1"}}

	res, err := e.Run(t.Context(), t.TempDir(), []string{"sh", "-c", "echo $RAILSFORGE_TEST"})
	require.NoError(t, err)
	assert.Equal(t, "1\n", res.Stdout)
}

func TestExec_Errors(t *testing.T) {
	t.Parallel()

	_, err := (&shell.Exec{}).Run(t.Context(), t.TempDir(), nil)
	require.Error(t, err)

	_, err = (&shell.Exec{}).Run(t.Context(), t.TempDir(), []string{"railsforge-no-such-binary"})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = (&shell.Exec{}).Run(ctx, t.TempDir(), []string{"sh", "-c", "true"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunPostGenerate(t *testing.T) {
	t.Parallel()

	var ran []string

	runner := shell.Func(func(_ context.Context, dir string, argv []string) (shell.Result, error) {
		assert.Equal(t, "/project", dir)
		require.Len(t, argv, 3)
		ran = append(ran, argv[2])

		switch argv[2] {
		case "exit 1":
			return shell.Result{ExitCode: 1, Stderr: "failed"}, nil
		case "missing":
			return shell.Result{}, errors.New("not found")
		default:
			return shell.Result{}, nil
		}
	})

	errs := shell.RunPostGenerate(t.Context(), &shell.HookOpts{
		Hooks:  []string{"exit 1", "missing", "bin/setup"},
		Dir:    "/project",
		Runner: runner,
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "exit status 1: failed")
	assert.Equal(t, []string{"exit 1", "missing", "bin/setup"}, ran)
}

func TestRunPostGenerate_NoHooks(t *testing.T) {
	t.Parallel()

	assert.Empty(t, shell.RunPostGenerate(t.Context(), &shell.HookOpts{}))
}
