// Package create orchestrates a railsforge generation run: it resolves the
// configuration, bootstraps the Rails app, plans, executes, and summarizes.
package create

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/execute"
	"github.com/donaldgifford/railsforge/internal/plan"
	"github.com/donaldgifford/railsforge/internal/preflight"
	"github.com/donaldgifford/railsforge/internal/prompt"
	"github.com/donaldgifford/railsforge/internal/secrets"
	"github.com/donaldgifford/railsforge/internal/shell"
	"github.com/donaldgifford/railsforge/internal/summary"
	"github.com/donaldgifford/railsforge/internal/tree"
	"github.com/donaldgifford/railsforge/internal/vcs"
)

// RailsNewArgs are the flags railsforge passes to rails new. The plan assumes
// the tree they produce.
var RailsNewArgs = []string{
	"--database=postgresql",
	"--javascript=esbuild",
	"--css=bootstrap",
	"--skip-test",
	"--skip-kamal",
	"--skip-rubocop",
}

var (
	appNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

	// reservedNames are rejected by rails new.
	reservedNames = []string{"application", "destroy", "plugin", "runner", "test"}
)

// Opts holds the options for a generation run.
type Opts struct {
	// AppName is the Rails application name and the project directory name.
	AppName string

	// OutputDir is the parent of the project directory. Defaults to ".".
	OutputDir string

	// Overrides are --set key=value pairs from the CLI.
	Overrides map[string]string

	// SelectionsFile is a YAML file of option selections, applied before Overrides.
	SelectionsFile string

	// UseDefaults skips interactive prompts and uses default values.
	UseDefaults bool

	// PromptFn asks for one option. If nil, prompting is skipped.
	PromptFn prompt.PromptFn

	// Customize asks whether to prompt at all. Declining keeps the defaults.
	// If nil, prompting goes ahead whenever PromptFn is set.
	Customize func() (bool, error)

	// SkipRailsNew runs against an existing project directory.
	SkipRailsNew bool

	// DryRun resolves and plans without touching the filesystem.
	DryRun bool

	// NoCommit disables checkpoint commits.
	NoCommit bool

	// NoHooks skips post-generate hooks.
	NoHooks bool

	// Global is the user configuration. A nil Global is treated as empty.
	Global *config.GlobalConfig

	// TemplateURL and TemplateRef select a remote template overlay, taking
	// precedence over the global config.
	TemplateURL string
	TemplateRef string

	// Runner executes commands. Defaults to shell.Exec on stdout/stderr.
	Runner shell.Runner

	// Fetcher downloads template overlays. Defaults to go-getter.
	Fetcher blueprint.Fetcher

	// Rand is the entropy source for generated secrets. Defaults to crypto/rand.
	Rand io.Reader

	// Now is the clock used for migration timestamps. Defaults to time.Now.
	Now func() time.Time

	Tracer trace.Tracer
	Logger *slog.Logger
}

// Result holds the output of a generation run.
type Result struct {
	Dir     string
	Config  *config.Resolved
	Plan    *plan.Plan
	Report  *execute.Report
	Secrets []secrets.Secret
	// Summary is the Markdown end-of-run report.
	Summary string
	// TemplateWarnings are non-fatal template overlay failures.
	TemplateWarnings []error
	// HookErrors are failed post-generate hooks.
	HookErrors []error
}

// Run executes the generation workflow. On a plan abort the partial Result is
// returned with the error so the caller can still show the summary.
func Run(ctx context.Context, opts *Opts) (*Result, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := ResolveConfig(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Dir: s.dir, Config: cfg}

	if opts.DryRun {
		return s.dryRun(ctx, result)
	}

	if err := s.bootstrap(ctx); err != nil {
		return nil, err
	}

	t := tree.NewOS(s.dir)

	p, store, err := s.plan(ctx, result, cfg, tree.NewCachedProbe(t, tree.DefaultProbeCacheSize))
	if err != nil {
		return nil, err
	}

	committer, err := s.committer(t)
	if err != nil {
		return nil, err
	}

	report, runErr := execute.Run(ctx, p, t, &execute.Opts{
		Runner:    s.runner,
		Committer: committer,
		Dir:       s.dir,
		Logger:    s.logger,
		Tracer:    opts.Tracer,
		Now:       s.now,
	})

	result.Report = report
	result.Secrets = store.All()
	result.Summary = summary.Render(cfg, report, result.Secrets)

	if runErr != nil {
		return result, fmt.Errorf("applying plan: %w", runErr)
	}

	if !opts.NoHooks && len(s.global.Hooks.PostGenerate) > 0 {
		result.HookErrors = shell.RunPostGenerate(ctx, &shell.HookOpts{
			Hooks:  s.global.Hooks.PostGenerate,
			Dir:    s.dir,
			Runner: s.runner,
			Logger: s.logger,
		})
	}

	s.logger.Info("rails app created", "dir", s.dir, "checkpoints", report.Commits(), "warnings", len(report.Warnings))

	return result, nil
}

// Plan resolves the configuration and builds the plan without applying it. An
// existing project directory is probed; otherwise the plan assumes a fresh
// rails new tree.
func Plan(ctx context.Context, opts *Opts) (*Result, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := ResolveConfig(opts)
	if err != nil {
		return nil, err
	}

	return s.dryRun(ctx, &Result{Dir: s.dir, Config: cfg})
}

// ResolveConfig merges the global defaults, the selections file, and the CLI
// overrides, then resolves every option, prompting when allowed.
func ResolveConfig(opts *Opts) (*config.Resolved, error) {
	var globalDefaults map[string]string
	if opts.Global != nil {
		globalDefaults = opts.Global.Defaults
	}

	var fromFile map[string]string

	if opts.SelectionsFile != "" {
		var err error

		fromFile, err = config.LoadSelections(opts.SelectionsFile)
		if err != nil {
			return nil, err
		}
	}

	selections := config.MergeSelections(globalDefaults, fromFile, opts.Overrides)

	useDefaults := opts.UseDefaults || opts.PromptFn == nil

	if !useDefaults && opts.Customize != nil {
		customize, err := opts.Customize()
		if err != nil {
			return nil, fmt.Errorf("asking to customize: %w", err)
		}

		useDefaults = !customize
	}

	cfg, err := prompt.Collect(config.Options(), selections, useDefaults, opts.PromptFn)
	if err != nil {
		return nil, fmt.Errorf("resolving options: %w", err)
	}

	return cfg, nil
}

// ValidateAppName rejects names rails new would refuse.
func ValidateAppName(name string) error {
	if !appNameRe.MatchString(name) {
		return fmt.Errorf("invalid app name %q: use letters, digits, underscores, and dashes, starting with a letter", name)
	}

	if slices.Contains(reservedNames, name) {
		return fmt.Errorf("invalid app name %q: reserved by Rails", name)
	}

	return nil
}

// session carries the defaulted collaborators of one run.
type session struct {
	opts   *Opts
	dir    string
	global *config.GlobalConfig
	runner shell.Runner
	logger *slog.Logger
	now    func() time.Time
}

func newSession(opts *Opts) (*session, error) {
	if err := ValidateAppName(opts.AppName); err != nil {
		return nil, err
	}

	s := &session{
		opts:   opts,
		global: opts.Global,
		runner: opts.Runner,
		logger: opts.Logger,
		now:    opts.Now,
	}

	if s.global == nil {
		s.global = &config.GlobalConfig{}
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.runner == nil {
		s.runner = &shell.Exec{Stdout: os.Stdout, Stderr: os.Stderr, Logger: s.logger}
	}

	if s.now == nil {
		s.now = time.Now
	}

	parent := opts.OutputDir
	if parent == "" {
		parent = "."
	}

	dir, err := filepath.Abs(filepath.Join(parent, opts.AppName))
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	s.dir = dir

	return s, nil
}

func (s *session) dryRun(ctx context.Context, result *Result) (*Result, error) {
	var probe tree.Probe = freshRailsApp()
	if info, err := os.Stat(s.dir); err == nil && info.IsDir() {
		probe = tree.NewCachedProbe(tree.NewOS(s.dir), tree.DefaultProbeCacheSize)
	}

	p, store, err := s.plan(ctx, result, result.Config, probe)
	if err != nil {
		return nil, err
	}

	result.Plan = p
	result.Secrets = store.All()
	result.Summary = summary.Render(result.Config, nil, result.Secrets)

	return result, nil
}

// bootstrap runs rails new, or checks the existing project with SkipRailsNew.
func (s *session) bootstrap(ctx context.Context) error {
	if s.opts.SkipRailsNew {
		if _, err := os.Stat(filepath.Join(s.dir, "Gemfile")); err != nil {
			return fmt.Errorf("%s is not a Rails project: %w", s.dir, err)
		}

		return nil
	}

	if err := checkOutputDirEmpty(s.dir); err != nil {
		return err
	}

	parent := filepath.Dir(s.dir)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return fmt.Errorf("creating output directory %s: %w", parent, err)
	}

	argv := append([]string{"rails", "new", filepath.Base(s.dir)}, RailsNewArgs...)
	s.logger.Info("running rails new", "app", s.opts.AppName, "dir", parent)

	res, err := s.runner.Run(ctx, parent, argv)
	if err != nil {
		return fmt.Errorf("running rails new: %w", err)
	}

	if res.ExitCode != 0 {
		return &execute.ShellFailureError{Argv: argv, ExitCode: res.ExitCode, Output: res.Output()}
	}

	return nil
}

func (s *session) plan(
	ctx context.Context,
	result *Result,
	cfg *config.Resolved,
	probe tree.Probe,
) (*plan.Plan, *secrets.Store, error) {
	templates, err := s.templates(ctx)
	if err != nil {
		return nil, nil, err
	}

	result.TemplateWarnings = templates.Warnings()

	ruby, rails, node := preflight.DetectVersions(ctx, s.runner)
	s.logger.Debug("detected versions", "ruby", ruby, "rails", rails, "node", node)

	store := secrets.NewStore(s.opts.Rand)

	p, err := plan.Build(cfg, probe, &plan.Env{
		AppName:      s.opts.AppName,
		RubyVersion:  ruby,
		RailsVersion: rails,
		NodeVersion:  node,
		Now:          s.now(),
		DatabaseURL:  preflight.DatabaseURL(s.dir, s.logger),
		Secrets:      store,
		Templates:    templates,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building plan: %w", err)
	}

	result.Plan = p

	return p, store, nil
}

func (s *session) templates(ctx context.Context) (*blueprint.Set, error) {
	url, ref := s.opts.TemplateURL, s.opts.TemplateRef
	if url == "" {
		url, ref = s.global.TemplateURL, s.global.TemplateRef
	}

	cacheDir := s.global.CacheDir
	if cacheDir == "" {
		cacheDir = blueprint.DefaultCacheDir()
	}

	set, err := blueprint.Load(ctx, &blueprint.LoadOpts{
		URL:     url,
		Ref:     ref,
		Cache:   blueprint.NewCache(cacheDir, s.logger),
		Fetcher: s.opts.Fetcher,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return set, nil
}

func (s *session) committer(t *tree.Tree) (vcs.Committer, error) {
	if s.opts.NoCommit {
		return &vcs.Recorder{}, nil
	}

	name, email := s.global.Author()

	g, err := vcs.Open(t.FS(), &vcs.Opts{
		AuthorName:  name,
		AuthorEmail: email,
		Now:         s.now,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// checkOutputDirEmpty returns an error if the directory exists and is non-empty.
func checkOutputDirEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("checking output directory: %w", err)
	}

	if len(entries) > 0 {
		return fmt.Errorf("output directory %s is not empty; use --skip-rails-new to configure an existing app", dir)
	}

	return nil
}
