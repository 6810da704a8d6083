package execute_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/execute"
	"github.com/donaldgifford/railsforge/internal/plan"
	"github.com/donaldgifford/railsforge/internal/secrets"
	"github.com/donaldgifford/railsforge/internal/shell"
	"github.com/donaldgifford/railsforge/internal/transform"
	"github.com/donaldgifford/railsforge/internal/tree"
	"github.com/donaldgifford/railsforge/internal/vcs"
)

// fakeRunner records commands and returns canned results keyed by the joined
// argv.
type fakeRunner struct {
	calls   []string
	results map[string]shell.Result
}

func (f *fakeRunner) Run(_ context.Context, _ string, argv []string) (shell.Result, error) {
	key := strings.Join(argv, " ")
	f.calls = append(f.calls, key)

	return f.results[key], nil
}

func seedTree(t *testing.T, files map[string]string) *tree.Tree {
	t.Helper()

	tr := tree.NewMemory()
	for path, content := range files {
		require.NoError(t, tr.WriteFile(path, []byte(content), 0o644))
	}

	return tr
}

func read(t *testing.T, tr *tree.Tree, path string) string {
	t.Helper()

	data, err := tr.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func opts(runner shell.Runner, committer vcs.Committer) *execute.Opts {
	return &execute.Opts{Runner: runner, Committer: committer}
}

func TestRun_AppliesEveryOperationKind(t *testing.T) {
	t.Parallel()

	tr := seedTree(t, map[string]string{
		"Gemfile":                            "# comment\ngem \"rails\" # pinned\n",
		"config/environments/development.rb": "Rails.application.configure do\n  config.x = 1\nend\n",
		"config/environments/production.rb":  "  # config.force_ssl = true\n",
		"config/application.rb":              "    config.generators.system_tests = nil\n",
		"package.json":                       "{\n  \"devDependencies\": {\n    \"esbuild\": \"^0.25.0\"\n  }\n}\n",
		"config/cache.yml":                   "production:\n  database: cache\n  store_options:\n    max_size: 1\n",
		"bin/render-build.sh":                "#!/usr/bin/env bash\n",
		"db/cache_schema.rb":                 "schema\n",
		"db/cache_migrate/.keep":             "",
	})

	p := &plan.Plan{AppName: "blog", Checkpoints: []plan.Checkpoint{{
		Name:    "everything",
		Message: "Apply everything",
		Operations: []plan.Operation{
			{Kind: plan.KindWriteFile, Path: "config/initializers/goldiloader.rb", Content: "Goldiloader.enabled = true\n"},
			{Kind: plan.KindAppendText, Path: "Gemfile", Content: "gem \"bullet\"\n"},
			{Kind: plan.KindRewriteFile, Path: "Gemfile", Transform: transform.NameStripLineComments},
			{
				Kind: plan.KindInsertText, Path: "config/environments/development.rb",
				Anchor: "Rails.application.configure do\n", Content: "  config.y = 2\n",
				Placement: transform.After, Occurrence: transform.First, Required: true,
			},
			{
				Kind: plan.KindReplaceText, Path: "config/application.rb", Regexp: true,
				Pattern: `(?m)^([ \t]*)config\.generators\.system_tests = nil$`, Content: "${1}config.generators do |g|\n${1}end",
				Required: true,
			},
			{Kind: plan.KindUncomment, Path: "config/environments/production.rb", Pattern: `config\.force_ssl = true`},
			{Kind: plan.KindEditJSON, Path: "package.json", JSON: []transform.JSONMutation{
				transform.MoveJSON([]string{"devDependencies", "esbuild"}, []string{"dependencies", "esbuild"}),
			}},
			{Kind: plan.KindEditYAML, Path: "config/cache.yml", YAML: []transform.YAMLMutation{
				transform.DeleteYAML("production", "database"),
			}},
			{Kind: plan.KindSetExecutable, Path: "bin/render-build.sh", Mode: 0o755},
			{Kind: plan.KindDeleteFile, Path: "db/cache_schema.rb"},
			{Kind: plan.KindDeleteDir, Path: "db/cache_migrate"},
			{Kind: plan.KindRunCommand, Argv: []string{"bundle", "install"}},
		},
	}}}

	runner := &fakeRunner{}
	committer := &vcs.Recorder{}

	report, err := execute.Run(t.Context(), p, tr, opts(runner, committer))
	require.NoError(t, err)

	assert.Equal(t, "Goldiloader.enabled = true\n", read(t, tr, "config/initializers/goldiloader.rb"))
	assert.Equal(t, "gem \"rails\"\ngem \"bullet\"\n", read(t, tr, "Gemfile"))
	assert.Equal(t, "Rails.application.configure do\n  config.y = 2\n  config.x = 1\nend\n",
		read(t, tr, "config/environments/development.rb"))
	assert.Equal(t, "    config.generators do |g|\n    end\n", read(t, tr, "config/application.rb"))
	assert.Equal(t, "  config.force_ssl = true\n", read(t, tr, "config/environments/production.rb"))
	assert.Contains(t, read(t, tr, "package.json"), `"dependencies"`)
	assert.Contains(t, read(t, tr, "package.json"), `"devDependencies": {}`)
	assert.NotContains(t, read(t, tr, "config/cache.yml"), "database: cache")
	assert.Contains(t, read(t, tr, "config/cache.yml"), "max_size: 1")

	mode, err := tr.Mode("bin/render-build.sh")
	require.NoError(t, err)
	assert.NotZero(t, mode&0o100)

	assert.False(t, tr.Exists("db/cache_schema.rb"))
	assert.False(t, tr.Exists("db/cache_migrate"))
	assert.Equal(t, []string{"bundle install"}, runner.calls)

	assert.Equal(t, []string{"Apply everything"}, committer.Messages)
	assert.True(t, report.Completed)
	assert.Empty(t, report.Warnings)
	require.Len(t, report.Checkpoints, 1)
	assert.Equal(t, 12, report.Checkpoints[0].Applied)
	assert.True(t, report.Checkpoints[0].Committed)
	assert.Equal(t, 1, report.Commits())

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
}

func TestRun_RequiredAnchorMissAborts(t *testing.T) {
	t.Parallel()

	tr := seedTree(t, map[string]string{"config/routes.rb": "Rails.application.routes.draw do\nend\n"})

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{
		{Name: "first", Message: "First", Operations: []plan.Operation{
			{Kind: plan.KindWriteFile, Path: "a.txt", Content: "a"},
		}},
		{Name: "uuid", Message: "Second", Operations: []plan.Operation{
			{Kind: plan.KindWriteFile, Path: "b.txt", Content: "b"},
			{
				Kind: plan.KindInsertText, Path: "config/routes.rb", Anchor: "primary_abstract_class\n",
				Content: "x", Placement: transform.After, Required: true,
			},
			{Kind: plan.KindWriteFile, Path: "c.txt", Content: "c"},
		}},
		{Name: "never", Message: "Third"},
	}}

	committer := &vcs.Recorder{}

	report, err := execute.Run(t.Context(), p, tr, opts(&fakeRunner{}, committer))

	var aborted *execute.PlanAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "uuid", aborted.Checkpoint)
	assert.Equal(t, 1, aborted.Index)
	require.ErrorIs(t, err, transform.ErrAnchorNotFound)

	var anchor *transform.AnchorNotFoundError
	require.ErrorAs(t, err, &anchor)
	assert.Equal(t, "config/routes.rb", anchor.Path)

	assert.Equal(t, []string{"First"}, committer.Messages)
	assert.True(t, tr.Exists("b.txt"))
	assert.False(t, tr.Exists("c.txt"))

	require.NotNil(t, report)
	assert.False(t, report.Completed)
	require.Len(t, report.Checkpoints, 2)
	assert.Equal(t, 1, report.Checkpoints[1].Applied)
}

func TestRun_RequiredReplaceMissLeavesLastCheckpoint(t *testing.T) {
	t.Parallel()

	tr := seedTree(t, map[string]string{
		"config/application.rb": "module Blog\n  class Application < Rails::Application\n  end\nend\n",
	})

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{
		{Name: "gems", Message: "Gems", Operations: []plan.Operation{
			{Kind: plan.KindWriteFile, Path: "Gemfile.lock", Content: "GEM\n"},
			{
				Kind: plan.KindInsertText, Path: "config/application.rb", Anchor: "Rails::Application\n",
				Content: "    config.load_defaults 8.0\n", Placement: transform.After, Required: true,
			},
		}},
		{Name: "generators", Message: "Configure generators", Operations: []plan.Operation{
			{
				Kind: plan.KindReplaceText, Path: "config/application.rb", Regexp: true,
				Pattern: `(?m)^([ \t]*)config\.generators\.system_tests = nil$`, Content: "${1}config.generators do |g|\n${1}end",
				Required: true,
			},
			{Kind: plan.KindWriteFile, Path: "config/initializers/generators.rb", Content: "x\n"},
		}},
		{Name: "docs", Message: "Docs", Operations: []plan.Operation{
			{Kind: plan.KindWriteFile, Path: "README.md", Content: "# Blog\n"},
		}},
	}}

	committer := &vcs.Recorder{}

	report, err := execute.Run(t.Context(), p, tr, opts(&fakeRunner{}, committer))
	require.ErrorIs(t, err, transform.ErrAnchorNotFound)

	var aborted *execute.PlanAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "generators", aborted.Checkpoint)
	assert.Equal(t, 0, aborted.Index)

	// Exactly the state committed by the gems checkpoint.
	assert.Equal(t, "GEM\n", read(t, tr, "Gemfile.lock"))
	assert.Equal(t, "module Blog\n  class Application < Rails::Application\n    config.load_defaults 8.0\n  end\nend\n",
		read(t, tr, "config/application.rb"))
	assert.False(t, tr.Exists("config/initializers/generators.rb"))
	assert.False(t, tr.Exists("README.md"))

	assert.Equal(t, []string{"Gems"}, committer.Messages)
	require.Len(t, report.Checkpoints, 2)
	assert.True(t, report.Checkpoints[0].Committed)
	assert.Zero(t, report.Checkpoints[1].Applied)
	assert.False(t, report.Checkpoints[1].Committed)
}

func TestRun_UnknownTransform(t *testing.T) {
	t.Parallel()

	tr := seedTree(t, map[string]string{"Gemfile": "gem \"rails\"\n"})

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{{Name: "gems", Message: "Gems", Operations: []plan.Operation{
		{Kind: plan.KindRewriteFile, Path: "Gemfile", Transform: "comment-out-declarations"},
	}}}}

	_, err := execute.Run(t.Context(), p, tr, opts(&fakeRunner{}, &vcs.Recorder{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown transform "comment-out-declarations" (known: strip-line-comments)`)
	assert.Equal(t, "gem \"rails\"\n", read(t, tr, "Gemfile"))
}

func TestRun_OptionalMissesBecomeWarnings(t *testing.T) {
	t.Parallel()

	tr := seedTree(t, map[string]string{
		"config/initializers/ahoy.rb": "Ahoy.api = true\n",
		"package.json":                `{"dependencies":{}}`,
	})

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{{Name: "analytics", Message: "Analytics", Operations: []plan.Operation{
		{Kind: plan.KindReplaceText, Path: "config/initializers/ahoy.rb", Pattern: "Ahoy.api = false", Content: "Ahoy.api = true"},
		{Kind: plan.KindEditYAML, Path: "config/honeybadger.yml", YAML: []transform.YAMLMutation{transform.SetYAML("x", "api_key")}},
		{Kind: plan.KindEditJSON, Path: "package.json", JSON: []transform.JSONMutation{
			transform.MoveJSON([]string{"devDependencies", "esbuild"}, []string{"dependencies", "esbuild"}),
		}},
		{Kind: plan.KindWriteFile, Path: "db/blazer_queries.yml", Content: "queries: []\n"},
	}}}}

	report, err := execute.Run(t.Context(), p, tr, opts(&fakeRunner{}, &vcs.Recorder{}))
	require.NoError(t, err)

	require.Len(t, report.Warnings, 3)
	assert.Contains(t, report.Warnings[0].Message, "config/initializers/ahoy.rb")
	assert.Contains(t, report.Warnings[1].Message, "does not exist")
	assert.Equal(t, "analytics", report.Warnings[2].Checkpoint)
	assert.Equal(t, "Ahoy.api = true\n", read(t, tr, "config/initializers/ahoy.rb"))
	assert.Equal(t, `{"dependencies":{}}`, read(t, tr, "package.json"))
	assert.True(t, tr.Exists("db/blazer_queries.yml"))
}

func TestRun_ShellFailures(t *testing.T) {
	t.Parallel()

	newRunner := func() *fakeRunner {
		return &fakeRunner{results: map[string]shell.Result{
			"yarn add ahoy.js":       {ExitCode: 1, Stderr: "network down"},
			"bundle exec standardrb": {ExitCode: 1, Stdout: "app/models/user.rb:1:1: Style/Foo"},
			"bundle install":         {ExitCode: 7, Stderr: "Could not find gem"},
		}}
	}

	tryRun := func(argv ...string) plan.Operation {
		return plan.Operation{Kind: plan.KindRunCommand, Argv: argv, BestEffort: true}
	}

	check := tryRun("bundle", "exec", "standardrb")
	check.ReportOutput = true

	t.Run("best effort", func(t *testing.T) {
		t.Parallel()

		p := &plan.Plan{Checkpoints: []plan.Checkpoint{{Name: "formatting", Message: "Format", Operations: []plan.Operation{
			tryRun("yarn", "add", "ahoy.js"),
			check,
		}}}}

		report, err := execute.Run(t.Context(), p, tree.NewMemory(), opts(newRunner(), &vcs.Recorder{}))
		require.NoError(t, err)

		require.Len(t, report.Warnings, 2)
		assert.Contains(t, report.Warnings[0].Message, "network down")
		assert.Empty(t, report.Warnings[0].Output)
		assert.Equal(t, "app/models/user.rb:1:1: Style/Foo", report.Warnings[1].Output)
	})

	t.Run("required", func(t *testing.T) {
		t.Parallel()

		p := &plan.Plan{Checkpoints: []plan.Checkpoint{{Name: "gems", Message: "Gems", Operations: []plan.Operation{
			{Kind: plan.KindRunCommand, Argv: []string{"bundle", "install"}},
		}}}}

		_, err := execute.Run(t.Context(), p, tree.NewMemory(), opts(newRunner(), &vcs.Recorder{}))

		var shellErr *execute.ShellFailureError
		require.ErrorAs(t, err, &shellErr)
		assert.Equal(t, 7, shellErr.ExitCode)
		assert.Contains(t, err.Error(), "Could not find gem")

		var aborted *execute.PlanAbortedError
		require.ErrorAs(t, err, &aborted)
		assert.Equal(t, "gems", aborted.Checkpoint)
	})
}

func TestRun_RunnerErrorIsFatal(t *testing.T) {
	t.Parallel()

	boom := errors.New("exec: not found")
	runner := shell.Func(func(context.Context, string, []string) (shell.Result, error) {
		return shell.Result{}, boom
	})

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{{Name: "gems", Operations: []plan.Operation{
		{Kind: plan.KindRunCommand, Argv: []string{"bundle", "install"}},
	}}}}

	_, err := execute.Run(t.Context(), p, tree.NewMemory(), opts(runner, &vcs.Recorder{}))
	require.ErrorIs(t, err, boom)
}

func TestRun_MalformedArtifactNeverWritten(t *testing.T) {
	t.Parallel()

	tr := tree.NewMemory()

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{{Name: "linting", Operations: []plan.Operation{
		{Kind: plan.KindWriteFile, Path: ".eslintrc.json", Content: `{"extends": [`},
	}}}}

	_, err := execute.Run(t.Context(), p, tr, opts(&fakeRunner{}, &vcs.Recorder{}))

	var malformed *transform.MalformedArtifactError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, ".eslintrc.json", malformed.Path)
	assert.False(t, tr.Exists(".eslintrc.json"))
}

func TestRun_CancelledBetweenOperations(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	runner := shell.Func(func(context.Context, string, []string) (shell.Result, error) {
		cancel()
		return shell.Result{}, nil
	})

	tr := tree.NewMemory()

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{{Name: "gems", Operations: []plan.Operation{
		{Kind: plan.KindRunCommand, Argv: []string{"bundle", "install"}},
		{Kind: plan.KindWriteFile, Path: "after.txt", Content: "x"},
	}}}}

	committer := &vcs.Recorder{}

	_, err := execute.Run(ctx, p, tr, opts(runner, committer))
	require.ErrorIs(t, err, context.Canceled)

	var aborted *execute.PlanAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, 1, aborted.Index)
	assert.False(t, tr.Exists("after.txt"))
	assert.Empty(t, committer.Messages)
}

func TestRun_GitCommitSkippedWithoutChanges(t *testing.T) {
	t.Parallel()

	tr := tree.NewMemory()

	g, err := vcs.Open(tr.FS(), nil)
	require.NoError(t, err)

	p := &plan.Plan{Checkpoints: []plan.Checkpoint{
		{Name: "docs", Message: "Add project documentation files", Operations: []plan.Operation{
			{Kind: plan.KindWriteFile, Path: "README.md", Content: "# Blog\n"},
		}},
		{Name: "formatting", Message: "Apply StandardRB formatting", Operations: []plan.Operation{
			{Kind: plan.KindRunCommand, Argv: []string{"bundle", "exec", "standardrb", "--fix"}, BestEffort: true},
		}},
	}}

	report, err := execute.Run(t.Context(), p, tr, opts(&fakeRunner{}, g))
	require.NoError(t, err)

	assert.True(t, report.Checkpoints[0].Committed)
	assert.False(t, report.Checkpoints[1].Committed)
	assert.Equal(t, 1, report.Commits())

	// The clean checkpoint left the worktree as the first one committed it.
	committed, err := g.Commit(t.Context(), "Nothing new")
	require.NoError(t, err)
	assert.False(t, committed)
}

func TestRun_CheckpointSpans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	p := &plan.Plan{AppName: "blog", Checkpoints: []plan.Checkpoint{
		{Name: "gems", Message: "Gems"},
		{Name: "docs", Message: "Docs"},
	}}

	o := opts(&fakeRunner{}, &vcs.Recorder{})
	o.Tracer = provider.Tracer("test")

	_, err := execute.Run(t.Context(), p, tree.NewMemory(), o)
	require.NoError(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}

	assert.Equal(t, []string{"checkpoint gems", "checkpoint docs", "railsforge.execute"}, names)
}

func TestRun_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := execute.Run(t.Context(), &plan.Plan{}, tree.NewMemory(), &execute.Opts{Committer: &vcs.Recorder{}})
	require.Error(t, err)

	_, err = execute.Run(t.Context(), &plan.Plan{}, tree.NewMemory(), &execute.Opts{Runner: &fakeRunner{}})
	require.Error(t, err)
}

// generatedApp is a rails new tree plus the files the generators in the
// default plan create.
func generatedApp() map[string]string {
	return map[string]string{
		"Gemfile":                            "source \"https://rubygems.org\"\n\ngem \"rails\", \"~> 8.0.2\" # framework\n",
		"Procfile.dev":                       "web: bin/rails server\n",
		"package.json":                       `{"name":"blog","devDependencies":{"esbuild":"^0.25.0"}}`,
		"config/application.rb":              "module Blog\n  class Application < Rails::Application\n    config.generators.system_tests = nil\n  end\nend\n",
		"config/routes.rb":                   "Rails.application.routes.draw do\nend\n",
		"config/environments/development.rb": "Rails.application.configure do\n  config.enable_reloading = true\nend\n",
		"config/environments/test.rb":        "Rails.application.configure do\nend\n",
		"config/environments/production.rb": "Rails.application.configure do\n" +
			"  # config.force_ssl = true\n" +
			"  config.solid_queue.connects_to = { database: { writing: :queue } }\n" +
			"end\n",
		"config/cache.yml":            "default: &default\n  store_options:\n    max_size: <%= 256.megabytes %>\n\nproduction:\n  database: cache\n  <<: *default\n",
		"config/cable.yml":            "production:\n  adapter: solid_cable\n  connects_to:\n    database:\n      writing: cable\n",
		"db/cache_schema.rb":          "ActiveRecord::Schema[8.0].define(version: 1) do\n  create_table \"solid_cache_entries\" do |t|\n  end\nend\n",
		"db/queue_schema.rb":          "ActiveRecord::Schema[8.0].define(version: 1) do\n  create_table \"solid_queue_jobs\" do |t|\n  end\nend\n",
		"db/cache_migrate/.keep":      "",
		"config/initializers/ahoy.rb": "class Ahoy::Store < Ahoy::DatabaseStore\nend\n\nAhoy.api = false\n",
		"config/initializers/rollbar.rb": "Rollbar.configure do |config|\n" +
			"  # Here we'll disable in 'test':\n  if Rails.env.test?\n    config.enabled = false\n  end\nend\n",
		"spec/rails_helper.rb": "require 'spec_helper'\n" +
			"# Rails.root.glob('spec/support/**/*.rb').sort_by(&:to_s).each { |f| require f }\n" +
			"RSpec.configure do |config|\nend\n",
		"spec/spec_helper.rb":                               "RSpec.configure do |config|\nend\n",
		"app/javascript/application.js":                     "import \"@hotwired/turbo-rails\"\n",
		"app/assets/stylesheets/application.bootstrap.scss": "@import 'bootstrap/scss/bootstrap';\n",
	}
}

func planDefaults(t *testing.T, tr *tree.Tree) *plan.Plan {
	t.Helper()

	set, err := blueprint.Bundled()
	require.NoError(t, err)

	p, err := plan.Build(config.Defaults(), tree.NewCachedProbe(tr, 0), &plan.Env{
		AppName:      "blog",
		RubyVersion:  "3.4.1",
		RailsVersion: "8.0.2",
		NodeVersion:  "22.11.0",
		Now:          time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC),
		Secrets:      secrets.NewStore(nil),
		Templates:    set,
	})
	require.NoError(t, err)

	return p
}

func snapshot(t *testing.T, tr *tree.Tree, paths []string) map[string]string {
	t.Helper()

	migrations, err := tr.Glob("db/migrate/*.rb")
	require.NoError(t, err)

	out := make(map[string]string, len(paths)+len(migrations))
	for _, path := range append(paths, migrations...) {
		if tr.Exists(path) {
			out[path] = read(t, tr, path)
		}
	}

	return out
}

func TestRun_DefaultPlanRerun(t *testing.T) {
	t.Parallel()

	tr := seedTree(t, generatedApp())

	paths := []string{
		".env", ".env.example", ".gitignore", "README.md", ".ruby-version",
		"config/database.yml", "config/initializers/goldiloader.rb",
		"app/assets/stylesheets/_bootstrap-overrides.scss",
	}
	for path := range generatedApp() {
		paths = append(paths, path)
	}

	first, err := execute.Run(t.Context(), planDefaults(t, tr), tr, opts(&fakeRunner{}, &vcs.Recorder{}))
	require.NoError(t, err)
	assert.True(t, first.Completed)
	assert.Empty(t, first.Warnings)

	after := snapshot(t, tr, paths)
	assert.Contains(t, after["config/application.rb"], "config.generators do |g|")
	assert.Contains(t, after["config/environments/production.rb"], "  config.force_ssl = true\n")
	assert.NotContains(t, after["config/cache.yml"], "database: cache")
	assert.Contains(t, after["config/cache.yml"], "<<: *default")
	assert.Equal(t, 1, strings.Count(after["Gemfile"], `gem "rspec-rails"`))
	assert.Len(t, after, len(paths)-3+2, "schemas replaced by two migrations")

	second, err := execute.Run(t.Context(), planDefaults(t, tr), tr, opts(&fakeRunner{}, &vcs.Recorder{}))
	require.NoError(t, err)
	assert.True(t, second.Completed)
	assert.Empty(t, second.Warnings)

	assert.Equal(t, after, snapshot(t, tr, paths))
	assert.Equal(t, 1, strings.Count(
		read(t, tr, "app/assets/stylesheets/application.bootstrap.scss"), "@import 'bootstrap-overrides';"))

	for _, cp := range second.Checkpoints {
		assert.NotEqual(t, "generators", cp.Name)
		assert.NotEqual(t, "production", cp.Name)
	}
}
