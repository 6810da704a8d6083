// Package plan derives the ordered list of file operations and commands that
// turn a freshly generated Rails app into the configured one. Building a plan
// is pure: it reads the resolved options, a read-only probe of the project
// tree, and the run environment, and touches nothing.
package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/secrets"
	"github.com/donaldgifford/railsforge/internal/transform"
	"github.com/donaldgifford/railsforge/internal/tree"
)

// Kind identifies an operation.
type Kind string

const (
	KindWriteFile     Kind = "write_file"
	KindDeleteFile    Kind = "delete_file"
	KindDeleteDir     Kind = "delete_dir"
	KindAppendText    Kind = "append_text"
	KindReplaceText   Kind = "replace_text"
	KindInsertText    Kind = "insert_text"
	KindUncomment     Kind = "uncomment"
	KindSetExecutable Kind = "set_executable"
	KindRunCommand    Kind = "run_command"
	KindRewriteFile   Kind = "rewrite_file"
	KindEditJSON      Kind = "edit_json"
	KindEditYAML      Kind = "edit_yaml"
)

// Operation is a single step. Fields are used according to Kind.
type Operation struct {
	Kind Kind   `json:"kind"`
	Path string `json:"path,omitempty"`

	// Content is the file body for write_file, the text for append_text and
	// insert_text, and the replacement for replace_text.
	Content string      `json:"content,omitempty"`
	Mode    fs.FileMode `json:"mode,omitempty"`

	Anchor     string               `json:"anchor,omitempty"`
	Placement  transform.Placement  `json:"placement,omitempty"`
	Occurrence transform.Occurrence `json:"occurrence,omitempty"`

	Pattern string `json:"pattern,omitempty"`
	Regexp  bool   `json:"regexp,omitempty"`

	Transform string                   `json:"transform,omitempty"`
	JSON      []transform.JSONMutation `json:"json,omitempty"`
	YAML      []transform.YAMLMutation `json:"yaml,omitempty"`

	Argv []string `json:"argv,omitempty"`

	// Required marks anchor and pattern operations whose miss aborts the run.
	Required bool `json:"required,omitempty"`

	// BestEffort marks commands whose failure is reported instead of fatal.
	BestEffort bool `json:"best_effort,omitempty"`

	// ReportOutput records a failing best-effort command's output in the report.
	ReportOutput bool `json:"report_output,omitempty"`

	Description string `json:"description,omitempty"`
}

// String renders a one-line summary used in logs and plan listings.
func (o *Operation) String() string {
	switch o.Kind {
	case KindRunCommand:
		s := "run " + strings.Join(o.Argv, " ")
		if o.BestEffort {
			s += " (best effort)"
		}

		return s
	case KindInsertText:
		return fmt.Sprintf("insert into %s %s %q", o.Path, o.Placement, o.Anchor)
	case KindReplaceText:
		return fmt.Sprintf("replace in %s %q", o.Path, o.Pattern)
	case KindUncomment:
		return fmt.Sprintf("uncomment in %s %q", o.Path, o.Pattern)
	case KindRewriteFile:
		return fmt.Sprintf("rewrite %s with %s", o.Path, o.Transform)
	default:
		return fmt.Sprintf("%s %s", strings.ReplaceAll(string(o.Kind), "_", " "), o.Path)
	}
}

// Checkpoint is a group of operations followed by one commit.
type Checkpoint struct {
	Name       string      `json:"name"`
	Message    string      `json:"message"`
	Operations []Operation `json:"operations"`
}

// Plan is the ordered set of checkpoints for one run. It is built once and
// consumed once by the executor.
type Plan struct {
	AppName     string       `json:"app_name"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Operations returns every operation in execution order.
func (p *Plan) Operations() []Operation {
	var ops []Operation
	for i := range p.Checkpoints {
		ops = append(ops, p.Checkpoints[i].Operations...)
	}

	return ops
}

// Checkpoint returns the checkpoint named name.
func (p *Plan) Checkpoint(name string) (*Checkpoint, bool) {
	for i := range p.Checkpoints {
		if p.Checkpoints[i].Name == name {
			return &p.Checkpoints[i], true
		}
	}

	return nil, false
}

// Templates renders blueprint files. *blueprint.Set satisfies it.
type Templates interface {
	Render(name string, data map[string]any) (string, error)
}

// Fallback versions used when the toolchain cannot be queried.
const (
	DefaultRubyVersion  = "3.4.1"
	DefaultRailsVersion = "8.0.0"
	DefaultNodeVersion  = "20.0.0"
)

// Env is everything about the run that is not an option value.
type Env struct {
	AppName      string
	RubyVersion  string
	RailsVersion string
	NodeVersion  string

	// Now seeds migration timestamps.
	Now time.Time

	// DatabaseURL is the DATABASE_URL of the invoking environment, if any.
	DatabaseURL string

	Secrets   *secrets.Store
	Templates Templates
}

func (e *Env) validate() error {
	if e == nil {
		return errors.New("environment is required")
	}

	var errs []error

	if e.AppName == "" {
		errs = append(errs, errors.New("app name is required"))
	}

	if e.Secrets == nil {
		errs = append(errs, errors.New("secret store is required"))
	}

	if e.Templates == nil {
		errs = append(errs, errors.New("templates are required"))
	}

	return errors.Join(errs...)
}

// step contributes one checkpoint, or nil when its axis is disabled.
type step func(b *builder) (*Checkpoint, error)

// steps is the fixed checkpoint order. The database collapse runs before any
// step that assumes a single database, and the dotenv step that draws the
// Blazer password runs before the documentation that refers to it.
var steps = []step{
	gemsStep,
	databaseStep,
	generatorsStep,
	solidQueueDevStep,
	goldiloaderStep,
	renderStep,
	ciStep,
	uuidStep,
	rspecStep,
	standardStep,
	herbStep,
	errorMonitoringStep,
	skylightStep,
	analyticsStep,
	lintingStep,
	bootstrapStep,
	dotenvStep,
	annotateStep,
	erdStep,
	bulletStep,
	productionStep,
	docsStep,
	formattingStep,
}

// Build derives the plan for cfg against the tree seen through probe.
func Build(cfg *config.Resolved, probe tree.Probe, env *Env) (*Plan, error) {
	if cfg == nil {
		return nil, errors.New("resolved configuration is required")
	}

	if err := env.validate(); err != nil {
		return nil, fmt.Errorf("invalid plan environment: %w", err)
	}

	if probe == nil {
		probe = tree.MapProbe{}
	}

	b, err := newBuilder(cfg, probe, env)
	if err != nil {
		return nil, err
	}

	p := &Plan{AppName: env.AppName}

	for _, s := range steps {
		cp, err := s(b)
		if err != nil {
			return nil, err
		}

		if cp == nil {
			continue
		}

		if err := validateCheckpoint(cp); err != nil {
			return nil, err
		}

		p.Checkpoints = append(p.Checkpoints, *cp)
	}

	return p, nil
}

// validateCheckpoint parses every structured file the checkpoint writes so a
// malformed artifact fails the plan instead of reaching disk.
func validateCheckpoint(cp *Checkpoint) error {
	for i := range cp.Operations {
		op := &cp.Operations[i]
		if op.Kind != KindWriteFile {
			continue
		}

		format := transform.FormatFor(op.Path)
		if format == "" {
			continue
		}

		if err := transform.Validate(format, []byte(op.Content)); err != nil {
			return fmt.Errorf("checkpoint %s: %w", cp.Name, transform.WithPath(err, op.Path))
		}
	}

	return nil
}
