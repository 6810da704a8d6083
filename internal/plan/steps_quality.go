package plan

import (
	"strings"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/transform"
	"github.com/donaldgifford/railsforge/internal/tree"
)

const rspecConfigure = "RSpec.configure do |config|\n"

const simplecovSetup = `
# SimpleCov configuration
if ENV['COVERAGE']
  require 'simplecov'
  SimpleCov.start 'rails'
end`

// specHelperAdditions is the block inserted at the top of the generated
// spec_helper's configure block.
func (b *builder) specHelperAdditions() string {
	lines := []string{
		`config.example_status_persistence_file_path = "tmp/rspec_examples.txt"`,
		"config.order = :random",
	}

	if b.on(config.Simplecov) {
		lines = append(lines, strings.TrimPrefix(simplecovSetup, "\n"))
	}

	var sb strings.Builder

	sb.WriteString("\n")

	for _, block := range lines {
		for _, l := range strings.Split(block, "\n") {
			if l == "" {
				sb.WriteString("\n")
				continue
			}

			sb.WriteString("  " + l + "\n")
		}
	}

	return sb.String()
}

func rspecStep(b *builder) (*Checkpoint, error) {
	ops := []Operation{
		generate("rspec:install"),
		insertAfter("spec/rails_helper.rb", rspecConfigure,
			"\n  config.infer_base_class_for_anonymous_controllers = false\n", false),
	}

	if b.pending("spec/rails_helper.rb", `(?m)^\s*#.*Rails\.root\.glob`) {
		ops = append(ops, uncomment("spec/rails_helper.rb", `Rails\.root\.glob`, false))
	}

	ops = append(ops, insertAfter("spec/spec_helper.rb", rspecConfigure, b.specHelperAdditions(), false))

	support := []struct {
		enabled bool
		path    string
		name    string
	}{
		{b.on(config.Webmock), "spec/support/webmock.rb", blueprint.WebMockSupport},
		{b.on(config.Shoulda), "spec/support/shoulda_matchers.rb", blueprint.ShouldaSupport},
		{true, "spec/support/factory_bot.rb", blueprint.FactoryBotSupport},
	}

	for _, s := range support {
		if !s.enabled {
			continue
		}

		op, err := b.writeBlueprint(s.path, s.name)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	return &Checkpoint{Name: "rspec", Message: "Configure RSpec with testing tools", Operations: ops}, nil
}

func standardStep(b *builder) (*Checkpoint, error) {
	op, err := b.writeBlueprint(".standard.yml", blueprint.StandardConfig)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{Name: "standard", Message: "Configure StandardRB", Operations: []Operation{op}}, nil
}

func herbStep(b *builder) (*Checkpoint, error) {
	op, err := b.writeBlueprint(".herb.yml", blueprint.HerbConfig)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{Name: "herb", Message: "Configure Herb for HTML+ERB analysis", Operations: []Operation{op}}, nil
}

func errorMonitoringStep(b *builder) (*Checkpoint, error) {
	switch b.cfg.String(config.ErrorMonitoring) {
	case config.MonitorRollbar:
		const initializer = "config/initializers/rollbar.rb"
		const testOnly = `# Here we'll disable in 'test':\n  if Rails\.env\.test\?`

		ops := []Operation{generate("rollbar")}
		if b.pending(initializer, testOnly) {
			ops = append(ops, replaceRegexp(initializer, testOnly,
				"# Here we'll disable in 'test' and 'development':\n  if Rails.env.test? || Rails.env.development?",
				false))
		}

		return &Checkpoint{
			Name:       "error-monitoring",
			Message:    "Configure Rollbar for error tracking",
			Operations: ops,
		}, nil
	case config.MonitorHoneybadger:
		return &Checkpoint{
			Name:    "error-monitoring",
			Message: "Configure Honeybadger for error tracking",
			Operations: []Operation{
				generate("honeybadger"),
				editYAML("config/honeybadger.yml", false,
					transform.SetYAML("<%= ENV['HONEYBADGER_API_KEY'] %>", "api_key")),
			},
		}, nil
	default:
		return nil, nil
	}
}

func skylightStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.Skylight) {
		return nil, nil
	}

	op, err := b.writeBlueprint("config/skylight.yml", blueprint.SkylightConfig)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:       "skylight",
		Message:    "Configure Skylight for performance monitoring",
		Operations: []Operation{op},
	}, nil
}

func analyticsStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.AhoyBlazer) {
		return nil, nil
	}

	ops := []Operation{
		generate("ahoy:install"),
		generate("blazer:install"),
		insertAfter("config/routes.rb", "Rails.application.routes.draw do\n",
			"  mount Blazer::Engine, at: \"/analytics\"\n", true),
	}

	if b.pending("config/initializers/ahoy.rb", `Ahoy\.api = false`) {
		ops = append(ops, replaceLiteral("config/initializers/ahoy.rb",
			"Ahoy.api = false", "Ahoy.api = true # Enable API for JavaScript tracking", false))
	}

	if b.probe.Exists("app/javascript/application.js") {
		tracking, err := b.render(blueprint.AhoyJavaScript, nil)
		if err != nil {
			return nil, err
		}

		ops = append(ops,
			appendText("app/javascript/application.js", tracking),
			tryRun("yarn", "add", "ahoy.js"),
		)
	}

	queries, err := b.writeBlueprint("db/blazer_queries.yml", blueprint.BlazerQueries)
	if err != nil {
		return nil, err
	}

	ops = append(ops, queries, rails("db:migrate"))

	return &Checkpoint{Name: "analytics", Message: "Configure Ahoy + Blazer for analytics", Operations: ops}, nil
}

var lintScripts = []struct{ name, command string }{
	{"lint", "run-p lint:eslint lint:stylelint lint:prettier"},
	{"lint:eslint", "eslint --max-warnings=0 --no-error-on-unmatched-pattern 'app/javascript/**/*.js'"},
	{"lint:stylelint", "stylelint 'app/assets/stylesheets/**/*.css'"},
	{"lint:prettier", "prettier --check 'app/**/*.{js,css,scss,json}'"},
	{"fix:prettier", "prettier --write 'app/**/*.{js,css,scss,json}'"},
}

func lintingStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.FullLinting) {
		return nil, nil
	}

	ops := []Operation{
		tryRun("yarn", "add", "--dev", "prettier", "eslint@^8.9.0", "stylelint",
			"@thoughtbot/eslint-config", "@thoughtbot/stylelint-config", "npm-run-all"),
	}

	files := []struct{ path, name string }{
		{".prettierrc", blueprint.PrettierConfig},
		{".prettierignore", blueprint.PrettierIgnore},
		{".eslintrc.json", blueprint.ESLintConfig},
		{".stylelintrc.json", blueprint.StylelintConfig},
		{".erb-lint.yml", blueprint.ERBLintConfig},
	}

	for _, f := range files {
		op, err := b.writeBlueprint(f.path, f.name)
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
	}

	if b.probe.Exists("package.json") {
		muts := make([]transform.JSONMutation, 0, len(lintScripts))
		for _, s := range lintScripts {
			muts = append(muts, transform.SetJSON(s.command, "scripts", s.name))
		}

		ops = append(ops, editJSON("package.json", true, muts...))
	}

	return &Checkpoint{Name: "linting", Message: "Configure JavaScript/CSS linting", Operations: ops}, nil
}

const (
	bootstrapStylesheet = "app/assets/stylesheets/application.bootstrap.scss"
	bootstrapSource     = "node_modules/bootstrap/scss/_variables.scss"
	bootstrapImport     = "@import 'bootstrap/scss/bootstrap';"
	overridesImport     = "@import 'bootstrap-overrides';"
)

const bootstrapHeader = `// Bootstrap Overrides
// Uncomment and modify any variables below to customize Bootstrap's appearance
// Original source: https://github.com/twbs/bootstrap/blob/main/scss/_variables.scss

// This file is imported BEFORE Bootstrap in application.bootstrap.scss:
// @import 'bootstrap-overrides';
// @import 'bootstrap/scss/bootstrap';

// ============================================

`

func bootstrapStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.BootstrapOverrides) || !b.probe.Exists(bootstrapStylesheet) {
		return nil, nil
	}

	variables, ok := b.probe.Read(bootstrapSource)
	if !ok {
		bundled, err := b.render(blueprint.BootstrapVariables, nil)
		if err != nil {
			return nil, err
		}

		variables = bundled
	}

	ops := []Operation{
		writeFile("app/assets/stylesheets/_bootstrap-overrides.scss",
			bootstrapHeader+transform.CommentOutDeclarations(variables)),
	}

	if !tree.Contains(b.probe, bootstrapStylesheet, overridesImport) {
		ops = append(ops, replaceLiteral(bootstrapStylesheet, bootstrapImport,
			overridesImport+"\n"+bootstrapImport, true))
	}

	return &Checkpoint{
		Name:       "bootstrap",
		Message:    "Add Bootstrap overrides file for customization",
		Operations: ops,
	}, nil
}
