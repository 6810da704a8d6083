package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/transform"
	"github.com/donaldgifford/railsforge/internal/tree"
)

func gemsStep(b *builder) (*Checkpoint, error) {
	rendered, err := b.render(blueprint.GemfileAdditions, nil)
	if err != nil {
		return nil, err
	}

	gemfile, _ := b.probe.Read("Gemfile")

	var ops []Operation
	if additions := undeclaredGems(rendered, gemfile); additions != "" {
		ops = append(ops, appendText("Gemfile", additions))
	}

	ops = append(ops,
		rewrite("Gemfile", transform.NameStripLineComments),
		run("bundle", "install"),
		rails("db:create"),
	)

	return &Checkpoint{
		Name:       "gems",
		Message:    "Initial Rails app with custom template",
		Operations: ops,
	}, nil
}

// solidComponent is one of the Solid Cache, Queue and Cable schemas that the
// single-database layout folds into regular migrations.
type solidComponent struct {
	name      string
	className string
}

var solidComponents = []solidComponent{
	{name: "cache", className: "CreateSolidCacheTables"},
	{name: "queue", className: "CreateSolidQueueTables"},
	{name: "cable", className: "CreateSolidCableTables"},
}

var schemaBlock = regexp.MustCompile(`(?s)ActiveRecord::Schema.*?\.define.*?do\s*(.*)\s*end`)

func databaseStep(b *builder) (*Checkpoint, error) {
	if b.on(config.MultiDatabase) {
		return &Checkpoint{
			Name:       "database",
			Message:    "Run initial migrations with Rails 8 multi-database setup",
			Operations: []Operation{rails("db:migrate")},
		}, nil
	}

	dbYAML, err := b.writeBlueprint("config/database.yml", blueprint.DatabaseYAML)
	if err != nil {
		return nil, err
	}

	ops := []Operation{dbYAML}

	if b.hasYAML("config/cache.yml", "production", "database") {
		ops = append(ops, editYAML("config/cache.yml", false, transform.DeleteYAML("production", "database")))
	}

	if b.hasYAML("config/cable.yml", "production", "connects_to") {
		ops = append(ops, editYAML("config/cable.yml", false, transform.DeleteYAML("production", "connects_to")))
	}

	const queueConnection = `\s*config\.solid_queue\.connects_to = \{ database: \{ writing: :queue \} \}\n`
	if tree.Contains(b.probe, "config/environments/production.rb", "config.solid_queue.connects_to") {
		ops = append(ops, replaceRegexp("config/environments/production.rb", queueConnection, "\n", false))
	}

	migrations, err := b.solidMigrations()
	if err != nil {
		return nil, err
	}

	ops = append(ops, migrations...)

	for _, c := range solidComponents {
		schema := "db/" + c.name + "_schema.rb"
		if b.probe.Exists(schema) {
			ops = append(ops, deleteFile(schema))
		}

		dir := "db/" + c.name + "_migrate"
		if b.probe.Exists(dir) {
			ops = append(ops, deleteDir(dir))
		}
	}

	ops = append(ops, rails("db:migrate"))

	return &Checkpoint{
		Name:       "database",
		Message:    "Configure single database (cache/queue/cable share primary DB)",
		Operations: ops,
	}, nil
}

// solidMigrations converts each Solid schema present in the tree into a
// timestamped migration. Timestamps start at env.Now and increase by one
// second per migration.
func (b *builder) solidMigrations() ([]Operation, error) {
	now := b.env.Now
	if now.IsZero() {
		now = time.Now()
	}

	stamp, err := strconv.ParseInt(now.UTC().Format("20060102150405"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("deriving migration timestamp: %w", err)
	}

	var ops []Operation

	for _, c := range solidComponents {
		schema, ok := b.probe.Read("db/" + c.name + "_schema.rb")
		if !ok {
			continue
		}

		body, ok := schemaBody(schema)
		if !ok {
			continue
		}

		content, err := b.render(blueprint.SolidMigration, map[string]any{
			"class_name": c.className,
			"body":       body,
		})
		if err != nil {
			return nil, err
		}

		path := fmt.Sprintf("db/migrate/%d_create_solid_%s_tables.rb", stamp, c.name)
		ops = append(ops, writeFile(path, content))
		stamp++
	}

	return ops, nil
}

// schemaBody extracts the statements inside an ActiveRecord::Schema.define
// block, re-indented for a migration's change method.
func schemaBody(src string) (string, bool) {
	m := schemaBlock.FindStringSubmatch(src)
	if m == nil {
		return "", false
	}

	lines := strings.Split(strings.TrimRight(m[1], " \t\r\n"), "\n")

	// The first line lost its indentation to the match; dedent the rest.
	indent := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}

		if n := leadingSpace(l); indent < 0 || n < indent {
			indent = n
		}
	}

	if indent < 0 {
		indent = 0
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}

		if i > 0 {
			l = l[min(indent, leadingSpace(l)):]
		}

		out[i] = "    " + strings.TrimRight(l, " \t\r")
	}

	return strings.Join(out, "\n"), true
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

func generatorsStep(b *builder) (*Checkpoint, error) {
	if tree.Contains(b.probe, "config/application.rb", "config.generators do |g|") {
		return nil, nil
	}

	return &Checkpoint{
		Name:    "generators",
		Message: "Configure generators",
		Operations: []Operation{
			replaceRegexp(
				"config/application.rb",
				`(?m)^([ \t]*)config\.generators\.system_tests = nil$`,
				"${1}config.generators do |g|\n"+
					"${1}  g.system_tests = nil\n"+
					"${1}  g.scaffold_stylesheet false\n"+
					"${1}end",
				true,
			),
		},
	}, nil
}

func solidQueueDevStep(b *builder) (*Checkpoint, error) {
	if !b.probe.Exists("Procfile.dev") {
		return nil, nil
	}

	return &Checkpoint{
		Name:    "solid-queue-dev",
		Message: "Configure SolidQueue for development with Procfile.dev",
		Operations: []Operation{
			appendText("Procfile.dev", "jobs: bundle exec rake solid_queue:start\n"),
			insertBeforeLast("config/environments/development.rb", "end\n",
				"\n"+
					"  # Use SolidQueue for background jobs in development\n"+
					"  # This matches production behavior and helps catch job-related issues early\n"+
					"  config.active_job.queue_adapter = :solid_queue\n",
				true),
		},
	}, nil
}

func goldiloaderStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.Goldiloader) {
		return nil, nil
	}

	op, err := b.writeBlueprint("config/initializers/goldiloader.rb", blueprint.GoldiloaderInitializer)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:       "goldiloader",
		Message:    "Configure Goldiloader for automatic N+1 prevention",
		Operations: []Operation{op},
	}, nil
}
