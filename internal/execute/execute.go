// Package execute applies a plan to a project tree, one checkpoint at a time,
// committing after each.
package execute

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/railsforge/internal/plan"
	"github.com/donaldgifford/railsforge/internal/shell"
	"github.com/donaldgifford/railsforge/internal/transform"
	"github.com/donaldgifford/railsforge/internal/tree"
	"github.com/donaldgifford/railsforge/internal/vcs"
)

const tracerName = "github.com/donaldgifford/railsforge/internal/execute"

// Opts configures a run.
type Opts struct {
	Runner    shell.Runner
	Committer vcs.Committer
	// Dir is where commands run. Defaults to the tree's root.
	Dir    string
	Logger *slog.Logger
	Tracer trace.Tracer
	// Now is used for report timestamps. Defaults to time.Now.
	Now func() time.Time
}

type executor struct {
	tree   *tree.Tree
	runner shell.Runner
	commit vcs.Committer
	dir    string
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
	report *Report
}

// Run applies p to t. The returned report covers every checkpoint that ran,
// including a partial one when the run aborts.
func Run(ctx context.Context, p *plan.Plan, t *tree.Tree, opts *Opts) (*Report, error) {
	if opts == nil {
		opts = &Opts{}
	}

	if opts.Runner == nil {
		return nil, errors.New("command runner is required")
	}

	if opts.Committer == nil {
		return nil, errors.New("committer is required")
	}

	e := &executor{
		tree:   t,
		runner: opts.Runner,
		commit: opts.Committer,
		dir:    opts.Dir,
		logger: opts.Logger,
		tracer: opts.Tracer,
		now:    opts.Now,
	}

	if e.dir == "" {
		e.dir = t.Root()
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}

	if e.now == nil {
		e.now = time.Now
	}

	e.report = &Report{
		RunID:     uuid.NewString(),
		AppName:   p.AppName,
		StartedAt: e.now(),
	}

	e.logger = e.logger.With("run_id", e.report.RunID)

	ctx, span := e.tracer.Start(ctx, "railsforge.execute",
		trace.WithAttributes(
			attribute.String("app.name", p.AppName),
			attribute.String("run.id", e.report.RunID),
			attribute.Int("checkpoints", len(p.Checkpoints)),
		))
	defer span.End()

	for i := range p.Checkpoints {
		if err := e.checkpoint(ctx, &p.Checkpoints[i]); err != nil {
			e.report.FinishedAt = e.now()
			span.RecordError(err)
			span.SetStatus(codes.Error, "plan aborted")

			return e.report, err
		}
	}

	e.report.FinishedAt = e.now()
	e.report.Completed = true

	return e.report, nil
}

func (e *executor) checkpoint(ctx context.Context, cp *plan.Checkpoint) error {
	ctx, span := e.tracer.Start(ctx, "checkpoint "+cp.Name,
		trace.WithAttributes(
			attribute.String("checkpoint.name", cp.Name),
			attribute.Int("checkpoint.operations", len(cp.Operations)),
		))
	defer span.End()

	started := e.now()
	logger := e.logger.With("checkpoint", cp.Name)
	logger.Info("applying checkpoint", "operations", len(cp.Operations))

	e.report.Checkpoints = append(e.report.Checkpoints, CheckpointReport{Name: cp.Name, Message: cp.Message})
	result := &e.report.Checkpoints[len(e.report.Checkpoints)-1]

	abort := func(index int, op string, cause error) error {
		span.RecordError(cause)
		span.SetStatus(codes.Error, cause.Error())
		result.Duration = e.now().Sub(started)

		return &PlanAbortedError{Checkpoint: cp.Name, Index: index, Operation: op, Cause: cause}
	}

	for i := range cp.Operations {
		op := &cp.Operations[i]

		if err := ctx.Err(); err != nil {
			return abort(i, op.String(), err)
		}

		logger.Debug("applying operation", "op", op.String())

		if err := e.apply(ctx, cp.Name, op); err != nil {
			return abort(i, op.String(), err)
		}

		result.Applied++
	}

	committed, err := e.commit.Commit(ctx, cp.Message)
	if err != nil {
		return abort(len(cp.Operations), "commit", fmt.Errorf("committing checkpoint: %w", err))
	}

	result.Committed = committed
	result.Duration = e.now().Sub(started)
	span.SetAttributes(attribute.Bool("checkpoint.committed", committed))

	return nil
}

func (e *executor) apply(ctx context.Context, checkpoint string, op *plan.Operation) error {
	switch op.Kind {
	case plan.KindWriteFile:
		return e.write(op.Path, op.Content, op.Mode)
	case plan.KindDeleteFile:
		return e.tree.Remove(op.Path)
	case plan.KindDeleteDir:
		return e.tree.RemoveAll(op.Path)
	case plan.KindSetExecutable:
		return e.chmod(op)
	case plan.KindRunCommand:
		return e.run(ctx, checkpoint, op)
	case plan.KindAppendText, plan.KindReplaceText, plan.KindInsertText, plan.KindUncomment,
		plan.KindRewriteFile, plan.KindEditJSON, plan.KindEditYAML:
		return e.edit(checkpoint, op)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// write validates structured content before it reaches the tree.
func (e *executor) write(path, content string, mode fs.FileMode) error {
	if format := transform.FormatFor(path); format != "" {
		if err := transform.Validate(format, []byte(content)); err != nil {
			return transform.WithPath(err, path)
		}
	}

	return e.tree.WriteFile(path, []byte(content), mode)
}

func (e *executor) chmod(op *plan.Operation) error {
	current, err := e.tree.Mode(op.Path)
	if err != nil {
		return err
	}

	mode := op.Mode
	if mode == 0 {
		mode = 0o755
	}

	return e.tree.Chmod(op.Path, current.Perm()|mode)
}

func (e *executor) run(ctx context.Context, checkpoint string, op *plan.Operation) error {
	res, err := e.runner.Run(ctx, e.dir, op.Argv)
	if err == nil && res.ExitCode != 0 {
		err = &ShellFailureError{Argv: op.Argv, ExitCode: res.ExitCode, Output: res.Output()}
	}

	if err == nil {
		return nil
	}

	if !op.BestEffort || ctx.Err() != nil {
		return err
	}

	w := Warning{Checkpoint: checkpoint, Operation: op.String(), Message: err.Error()}
	if op.ReportOutput {
		w.Output = res.Output()
	}

	e.warn(w)

	return nil
}

// edit applies a read-modify-write operation. Anchor misses and missing files
// are warnings unless the operation is required.
func (e *executor) edit(checkpoint string, op *plan.Operation) error {
	var current string

	switch data, err := e.tree.ReadFile(op.Path); {
	case err == nil:
		current = string(data)
	case op.Kind == plan.KindAppendText:
		// Appending to a missing file creates it.
	case op.Required:
		return err
	default:
		e.warn(Warning{Checkpoint: checkpoint, Operation: op.String(), Message: "skipped: " + op.Path + " does not exist"})
		return nil
	}

	updated, err := edited(current, op)
	if errors.Is(err, transform.ErrAnchorNotFound) && !op.Required {
		e.warn(Warning{
			Checkpoint: checkpoint,
			Operation:  op.String(),
			Message:    transform.WithPath(err, op.Path).Error(),
		})

		return nil
	}

	if err != nil {
		return transform.WithPath(err, op.Path)
	}

	if updated == current && e.tree.Exists(op.Path) {
		return nil
	}

	mode, err := e.tree.Mode(op.Path)
	if err != nil {
		mode = 0
	}

	return e.write(op.Path, updated, mode.Perm())
}

// edited computes the new content. Anchor operations always run as required
// so a miss is visible to the caller.
func edited(current string, op *plan.Operation) (string, error) {
	switch op.Kind {
	case plan.KindAppendText:
		return transform.Append(current, op.Content), nil
	case plan.KindReplaceText:
		pattern := transform.Literal(op.Pattern)
		if op.Regexp {
			pattern = transform.Regex(op.Pattern)
		}

		return transform.ReplacePattern(current, pattern, op.Content, true)
	case plan.KindInsertText:
		return transform.InsertText(current, transform.Insert{
			Anchor:     op.Anchor,
			Text:       op.Content,
			Placement:  op.Placement,
			Occurrence: op.Occurrence,
			Required:   true,
		})
	case plan.KindUncomment:
		return transform.UncommentMatching(current, op.Pattern, true)
	case plan.KindRewriteFile:
		fn, ok := transform.Lookup(op.Transform)
		if !ok {
			return "", fmt.Errorf("unknown transform %q (known: %s)", op.Transform, strings.Join(transform.Names(), ", "))
		}

		return fn(current), nil
	case plan.KindEditJSON:
		out, err := transform.EditJSON([]byte(current), op.JSON, true)
		return string(out), err
	case plan.KindEditYAML:
		out, err := transform.EditYAML([]byte(current), op.YAML, true)
		return string(out), err
	default:
		return "", fmt.Errorf("operation %q is not an edit", op.Kind)
	}
}

func (e *executor) warn(w Warning) {
	e.logger.Warn(w.Message, "checkpoint", w.Checkpoint, "op", w.Operation)
	e.report.Warnings = append(e.report.Warnings, w)
}
