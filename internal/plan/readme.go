package plan

import (
	"github.com/donaldgifford/railsforge/internal/config"
)

// packageManager describes the JavaScript package manager detected in the
// generated app.
type packageManager struct {
	name    string
	label   string
	install string
	lint    string
	fix     string
}

var packageManagers = []struct {
	lockfiles []string
	pm        packageManager
}{
	{[]string{"yarn.lock"}, packageManager{"yarn", "Yarn", "yarn install", "yarn lint", "yarn fix:prettier"}},
	{[]string{"pnpm-lock.yaml"}, packageManager{"pnpm", "pnpm", "pnpm install", "pnpm lint", "pnpm fix:prettier"}},
	{[]string{"bun.lockb", "bun.lock"}, packageManager{"bun", "bun", "bun install", "bun run lint", "bun run fix:prettier"}},
	{[]string{"package-lock.json"}, npm},
}

var npm = packageManager{"npm", "npm", "npm install", "npm run lint", "npm run fix:prettier"}

// detectPackageManager picks the manager by lockfile, falling back to npm
// when only package.json exists. ok is false for apps without Node.
func (b *builder) detectPackageManager() (packageManager, bool) {
	for _, c := range packageManagers {
		for _, lock := range c.lockfiles {
			if b.probe.Exists(lock) {
				return c.pm, true
			}
		}
	}

	if b.probe.Exists("package.json") {
		return npm, true
	}

	return packageManager{}, false
}

type toolingLine struct {
	enabled bool
	text    string
}

func (b *builder) readmeData() map[string]any {
	pm, usesNode := b.detectPackageManager()

	requirements := []string{
		"Ruby " + b.rubyVersion + " (see `.ruby-version`)",
		"PostgreSQL",
	}

	install := []string{"bundle install"}

	if usesNode {
		requirements = append(requirements, "Node.js (see `.node-version`)", pm.label)
		install = append(install, pm.install)
	}

	monitor := b.cfg.String(config.ErrorMonitoring)

	tooling := []string{
		"RSpec + FactoryBot",
		"StandardRB",
		"Herb",
		"bundler-audit",
		"Bullet",
		"Solid Queue",
		"AnnotateRb",
		"Dotenv",
	}

	for _, l := range []toolingLine{
		{b.on(config.Simplecov), "SimpleCov (coverage)"},
		{b.on(config.Shoulda), "Shoulda Matchers"},
		{b.on(config.Faker), "Faker"},
		{b.on(config.Webmock), "WebMock"},
		{b.on(config.Goldiloader), "Goldiloader (automatic N+1 prevention)"},
		{b.on(config.RackProfiler), "rack-mini-profiler"},
		{b.on(config.Skylight), "Skylight"},
		{b.on(config.AhoyBlazer), "Ahoy + Blazer"},
		{b.on(config.RailsERD), "Rails ERD"},
		{b.on(config.RailsDB), "rails_db"},
		{monitor == config.MonitorRollbar, "Rollbar"},
		{monitor == config.MonitorHoneybadger, "Honeybadger"},
		{b.on(config.BootstrapOverrides), "Bootstrap overrides (`app/assets/stylesheets/_bootstrap-overrides.scss`)"},
		{b.on(config.FullLinting), "Full JS/CSS/ERB linting stack"},
		{b.on(config.UseUUID), "UUID primary keys"},
		{b.on(config.MultiDatabase), "Rails multi-database (cache/queue/cable)"},
		{b.on(config.Render), "Render.com deployment files (`render.yaml`, `bin/render-build.sh`)"},
		{b.on(config.GitHubActions), "GitHub Actions CI (`.github/workflows/ci.yml`)"},
	} {
		if l.enabled {
			tooling = append(tooling, l.text)
		}
	}

	var docs []string
	if b.on(config.RailsERD) {
		docs = append(docs, "Generate ERD: `bundle exec erd`")
	}

	docs = append(docs, "Annotate models: `bundle exec annotaterb models`")

	if b.on(config.RailsDB) {
		docs = append(docs, "View database: Visit `/rails_db` in development")
	}

	var dbNotes []string
	if b.on(config.UseUUID) {
		dbNotes = append(dbNotes, "Primary keys default to UUIDs.")
	}

	if b.on(config.MultiDatabase) {
		dbNotes = append(dbNotes, "Rails multi-database is enabled (separate DBs for cache/queue/cable).")
	}

	dev := "bin/rails server"
	if b.probe.Exists("bin/dev") {
		dev = "bin/dev"
	}

	audit := "bundle exec bundle-audit check --update"
	if b.probe.Exists("bin/bundler-audit") {
		audit = "bin/bundler-audit check --update"
	}

	return map[string]any{
		"tooling":               tooling,
		"requirements":          requirements,
		"install_commands":      install,
		"dev_command":           dev,
		"js_lint_command":       pm.lint,
		"js_fix_command":        pm.fix,
		"bundler_audit_command": audit,
		"solid_queue_dev":       b.probe.Exists("Procfile.dev"),
		"doc_commands":          docs,
		"database_notes":        dbNotes,
	}
}
