package plan

import (
	"strings"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/config"
)

const dotenvIgnore = `
# Ignore dotenv files
.env*
!.env.example
`

func dotenvStep(b *builder) (*Checkpoint, error) {
	example, err := b.writeBlueprint(".env.example", blueprint.EnvExample)
	if err != nil {
		return nil, err
	}

	local := ""
	if b.on(config.AhoyBlazer) {
		local = "BLAZER_USERNAME=" + BlazerUsername + "\n" +
			"BLAZER_PASSWORD=" + b.data["blazer_password"].(string) + "\n"
	}

	return &Checkpoint{
		Name:    "dotenv",
		Message: "Configure dotenv",
		Operations: []Operation{
			example,
			writeFile(".env", local),
			appendText(".gitignore", dotenvIgnore),
		},
	}, nil
}

func annotateStep(b *builder) (*Checkpoint, error) {
	cfg, err := b.writeBlueprint(".annotaterb.yml", blueprint.AnnotateConfig)
	if err != nil {
		return nil, err
	}

	task, err := b.writeBlueprint("lib/tasks/auto_annotate_models.rake", blueprint.AnnotateTask)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:       "annotate",
		Message:    "Configure AnnotateRb with auto-annotation",
		Operations: []Operation{cfg, task},
	}, nil
}

func erdStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.RailsERD) {
		return nil, nil
	}

	op, err := b.writeBlueprint(".erdconfig", blueprint.ERDConfig)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:       "erd",
		Message:    "Configure Rails ERD",
		Operations: []Operation{generate("erd:install"), op},
	}, nil
}

const railsConfigure = "Rails.application.configure do\n"

func bulletStep(b *builder) (*Checkpoint, error) {
	block, err := b.render(blueprint.BulletConfig, nil)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:    "bullet",
		Message: "Configure Bullet for N+1 detection in dev and test",
		Operations: []Operation{
			insertAfter("config/environments/development.rb", railsConfigure, block, true),
			insertAfter("config/environments/test.rb", railsConfigure, block, true),
		},
	}, nil
}

func productionStep(b *builder) (*Checkpoint, error) {
	const production = "config/environments/production.rb"

	var ops []Operation

	if b.pending(production, `(?m)^\s*#\s*config\.force_ssl = true`) {
		ops = append(ops, uncomment(production, `config\.force_ssl = true`, false))
	}

	const formatter = `config\.log_formatter = ::Logger::Formatter\.new`

	content, _ := b.probe.Read(production)
	if !strings.Contains(content, "config.log_tags") && b.pending(production, formatter) {
		ops = append(ops, replaceRegexp(production, formatter,
			"config.log_formatter = ::Logger::Formatter.new\n  config.log_tags = [:request_id]",
			false))
	}

	if len(ops) == 0 {
		return nil, nil
	}

	return &Checkpoint{Name: "production", Message: "Configure production environment", Operations: ops}, nil
}

func docsStep(b *builder) (*Checkpoint, error) {
	readme, err := b.writeBlueprint("README.md", blueprint.Readme)
	if err != nil {
		return nil, err
	}

	contributing, err := b.writeBlueprint("CONTRIBUTING.md", blueprint.Contributing)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:    "docs",
		Message: "Add project documentation files",
		Operations: []Operation{
			readme,
			contributing,
			writeFile(".ruby-version", b.rubyVersion+"\n"),
			writeFile(".node-version", b.nodeVersion+"\n"),
		},
	}, nil
}

func formattingStep(_ *builder) (*Checkpoint, error) {
	check := tryRun("bundle", "exec", "standardrb")
	check.ReportOutput = true

	return &Checkpoint{
		Name:    "formatting",
		Message: "Apply StandardRB formatting",
		Operations: []Operation{
			tryRun("bundle", "exec", "standardrb", "--fix"),
			tryRun("bundle", "exec", "standardrb", "--fix-unsafely"),
			check,
		},
	}, nil
}
