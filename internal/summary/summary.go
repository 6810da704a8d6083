// Package summary renders the end-of-run report: the resolved configuration,
// deployment details, next steps, warnings, and generated credentials.
//
// The output is Markdown so it can be printed as-is or styled by the ui
// package. Rendering is deterministic for a given input.
package summary

import (
	"fmt"
	"strings"

	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/execute"
	"github.com/donaldgifford/railsforge/internal/plan"
	"github.com/donaldgifford/railsforge/internal/secrets"
)

// Markers used in front of option lines.
const (
	MarkOn       = "✅"
	MarkOff      = "❌"
	MarkInactive = "➖"
)

// blazerDashboard is the mount point of the analytics dashboard.
const blazerDashboard = "/analytics"

// maxOutputLines caps the command output echoed under a warning.
const maxOutputLines = 10

type group struct {
	key     string
	heading string
	always  []string
}

// groups lists option groups in display order, with the tools every app gets.
var groups = []group{
	{key: "testing", heading: "Testing Tools", always: []string{"RSpec & FactoryBot"}},
	{key: "performance", heading: "Performance Tools", always: []string{"Bullet N+1 detection"}},
	{key: "analytics", heading: "Analytics"},
	{key: "documentation", heading: "Documentation Tools", always: []string{"AnnotateRb"}},
	{key: "monitoring", heading: "Error Monitoring"},
	{key: "frontend", heading: "Frontend Tools"},
	{key: "database", heading: "Database Configuration"},
	{key: "deployment", heading: "Deployment"},
	{key: "ci", heading: "CI/CD"},
}

// Render returns the summary for a run. report may be nil when nothing was
// executed, and creds lists the secrets generated during the run.
func Render(cfg *config.Resolved, report *execute.Report, creds []secrets.Secret) string {
	var b strings.Builder

	writeHeader(&b, report)
	writeConfiguration(&b, cfg)

	if cfg.Bool(config.Render) {
		writeRender(&b, cfg)
	}

	if report != nil {
		writeWarnings(&b, report.Warnings)
	}

	writeNextSteps(&b, cfg, report)
	writeCredentials(&b, cfg, creds)

	return b.String()
}

func writeHeader(b *strings.Builder, report *execute.Report) {
	if report == nil {
		b.WriteString("# Rails app plan\n\n")
		return
	}

	if report.Completed {
		fmt.Fprintf(b, "# %s created\n\n", report.AppName)
	} else {
		fmt.Fprintf(b, "# %s partially created\n\n", report.AppName)
	}

	fmt.Fprintf(b, "Run `%s`: %d of %d checkpoints committed.\n",
		report.RunID, report.Commits(), len(report.Checkpoints))

	if !report.Completed && len(report.Checkpoints) > 0 {
		last := report.Checkpoints[len(report.Checkpoints)-1]
		fmt.Fprintf(b, "Generation stopped in checkpoint **%s**; earlier checkpoints are committed.\n", last.Name)
	}

	b.WriteString("\n")
}

func writeConfiguration(b *strings.Builder, cfg *config.Resolved) {
	b.WriteString("## Configuration\n")

	options := config.Options()

	for _, g := range groups {
		fmt.Fprintf(b, "\n### %s\n\n", g.heading)

		for _, tool := range g.always {
			fmt.Fprintf(b, "- %s %s (always included)\n", MarkOn, tool)
		}

		for i := range options {
			if options[i].Group == g.key {
				b.WriteString(OptionLine(cfg, &options[i]))
				b.WriteString("\n")
			}
		}
	}

	fmt.Fprintf(b, "\n### Code Quality\n\n- %s StandardRB (always included)\n- %s Herb (always included)\n\n",
		MarkOn, MarkOn)
}

// OptionLine renders one option as a Markdown list item.
func OptionLine(cfg *config.Resolved, opt *config.Option) string {
	if opt.DependsOn != "" && !cfg.Bool(opt.DependsOn) {
		return fmt.Sprintf("- %s %s (inactive: %s is off)", MarkInactive, opt.Description, opt.DependsOn)
	}

	switch opt.Type {
	case config.TypeBool:
		return fmt.Sprintf("- %s %s", mark(cfg.Bool(opt.Name)), opt.Description)
	case config.TypeEnum:
		value := cfg.String(opt.Name)
		return fmt.Sprintf("- %s %s: %s", mark(value != config.MonitorNone), opt.Description, value)
	default:
		value := cfg.String(opt.Name)
		if value == "" {
			return fmt.Sprintf("- %s %s: not configured", MarkOff, opt.Description)
		}

		return fmt.Sprintf("- %s %s: %s", MarkOn, opt.Description, value)
	}
}

func mark(on bool) string {
	if on {
		return MarkOn
	}

	return MarkOff
}

func writeRender(b *strings.Builder, cfg *config.Resolved) {
	b.WriteString("## Render.com\n\n")

	tier := "Paid (WEB_CONCURRENCY=2)"
	if cfg.Bool(config.RenderFreeTier) {
		tier = "Free (512MB, WEB_CONCURRENCY=0)"
	}

	database := "Render Postgres"
	if cfg.String(config.RenderDatabaseProvider) == config.ProviderSupabase {
		database = "Supabase (external)"
	}

	jobs := "Puma plugin (runs in web process)"
	if cfg.Bool(config.RenderSeparateWorker) {
		jobs = "Separate worker service"
	}

	domain := "Not configured"
	if d := cfg.String(config.RenderDomain); d != "" {
		domain = d
		if cfg.Bool(config.RenderIncludeWWW) {
			domain += ", www." + d
		}
	}

	fmt.Fprintf(b, "- Tier: %s\n", tier)
	fmt.Fprintf(b, "- Database: %s\n", database)
	fmt.Fprintf(b, "- Background jobs: %s\n", jobs)
	fmt.Fprintf(b, "- Custom domain: %s\n", domain)
	b.WriteString("- Deployment checklist: RENDER_DEPLOYMENT.md\n\n")
}

func writeWarnings(b *strings.Builder, warnings []execute.Warning) {
	if len(warnings) == 0 {
		return
	}

	fmt.Fprintf(b, "## Warnings (%d)\n\n", len(warnings))

	for _, w := range warnings {
		fmt.Fprintf(b, "- **%s**: %s\n", w.Checkpoint, w.Message)

		if w.Output != "" {
			b.WriteString("\n  ```\n")

			for _, line := range firstLines(w.Output, maxOutputLines) {
				fmt.Fprintf(b, "  %s\n", line)
			}

			b.WriteString("  ```\n\n")
		}
	}

	b.WriteString("\n")
}

func firstLines(s string, n int) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = append(lines[:n], fmt.Sprintf("... %d more lines", len(lines)-n))
	}

	return lines
}

func writeNextSteps(b *strings.Builder, cfg *config.Resolved, report *execute.Report) {
	steps := []string{}

	if report != nil && report.AppName != "" {
		steps = append(steps, fmt.Sprintf("`cd %s`", report.AppName))
	}

	steps = append(steps, "Review and edit the `.env` file", "Run `bin/dev`")

	if cfg.Bool(config.Render) {
		steps = append(steps, "Review RENDER_DEPLOYMENT.md for the deployment checklist")

		if cfg.String(config.RenderDatabaseProvider) == config.ProviderSupabase {
			steps = append(steps,
				"Create a Supabase project at https://supabase.com",
				"Push to GitHub and connect the repository to Render",
				"Set RAILS_MASTER_KEY and DATABASE_URL in the Render dashboard")
		} else {
			steps = append(steps,
				"Push to GitHub and connect the repository to Render",
				"Set RAILS_MASTER_KEY in the Render dashboard (from config/master.key)")
		}
	}

	b.WriteString("## Next steps\n\n")

	for i, s := range steps {
		fmt.Fprintf(b, "%d. %s\n", i+1, s)
	}

	b.WriteString("\n")
}

func writeCredentials(b *strings.Builder, cfg *config.Resolved, creds []secrets.Secret) {
	if len(creds) == 0 {
		return
	}

	b.WriteString("## ⚠️ IMPORTANT: generated credentials\n\n")

	if cfg.Bool(config.AhoyBlazer) {
		fmt.Fprintf(b, "- Blazer dashboard URL: `%s`\n", blazerDashboard)
		fmt.Fprintf(b, "- Blazer username: `%s`\n", plan.BlazerUsername)
	}

	for _, s := range creds {
		fmt.Fprintf(b, "- %s: `%s`\n", s.Label, s.Value)
	}

	b.WriteString("\nThese credentials are also saved in your `.env` file.\n")
}
