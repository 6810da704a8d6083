package shell

import (
	"context"
	"fmt"
	"log/slog"
)

// HookOpts configures post-generate hooks.
type HookOpts struct {
	// Hooks are shell snippets run with sh -c, in order.
	Hooks []string
	// Dir is the generated project.
	Dir    string
	Runner Runner
	Logger *slog.Logger
}

// RunPostGenerate runs the configured hooks after the last checkpoint. A
// failing hook is logged and collected; the remaining hooks still run since
// the project is already complete.
func RunPostGenerate(ctx context.Context, opts *HookOpts) []error {
	if len(opts.Hooks) == 0 {
		return nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var errs []error

	for _, hook := range opts.Hooks {
		logger.Debug("running post-generate hook", "cmd", hook)

		res, err := opts.Runner.Run(ctx, opts.Dir, []string{"sh", "-c", hook})
		if err == nil && res.ExitCode != 0 {
			err = fmt.Errorf("exit status %d: %s", res.ExitCode, res.Output())
		}

		if err != nil {
			logger.Warn("post-generate hook failed", "cmd", hook, "err", err)
			errs = append(errs, fmt.Errorf("hook %q: %w", hook, err))
		}
	}

	return errs
}
