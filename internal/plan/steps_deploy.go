package plan

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/transform"
)

// Render blueprint (render.yaml) document.
type renderBlueprint struct {
	Services  []renderService  `yaml:"services"`
	Databases []renderDatabase `yaml:"databases,omitempty"`
}

type renderService struct {
	Type             string      `yaml:"type"`
	Name             string      `yaml:"name"`
	Runtime          string      `yaml:"runtime"`
	Plan             string      `yaml:"plan"`
	BuildCommand     string      `yaml:"buildCommand"`
	PreDeployCommand string      `yaml:"preDeployCommand,omitempty"`
	StartCommand     string      `yaml:"startCommand"`
	HealthCheckPath  string      `yaml:"healthCheckPath,omitempty"`
	EnvVars          []renderEnv `yaml:"envVars"`
	Domains          []string    `yaml:"domains,omitempty"`
}

type renderEnv struct {
	Key          string              `yaml:"key"`
	Value        string              `yaml:"value,omitempty"`
	Sync         *bool               `yaml:"sync,omitempty"`
	FromDatabase *renderDatabaseLink `yaml:"fromDatabase,omitempty"`
}

type renderDatabaseLink struct {
	Name     string `yaml:"name"`
	Property string `yaml:"property"`
}

type renderDatabase struct {
	Name         string `yaml:"name"`
	DatabaseName string `yaml:"databaseName"`
	User         string `yaml:"user"`
	Plan         string `yaml:"plan"`
}

func manualEnv(key string) renderEnv {
	sync := false
	return renderEnv{Key: key, Sync: &sync}
}

// renderYAML encodes the render.yaml blueprint for the configured tier,
// database provider, worker layout and domain.
func (b *builder) renderYAML() (string, error) {
	r, _ := b.data["render"].(map[string]any)
	tier, _ := r["service_plan"].(string)
	concurrency, _ := r["web_concurrency"].(string)
	dbName, _ := r["database"].(string)

	supabase := b.cfg.String(config.RenderDatabaseProvider) == config.ProviderSupabase
	separateWorker := b.on(config.RenderSeparateWorker)

	databaseURL := manualEnv("DATABASE_URL")
	if !supabase {
		databaseURL = renderEnv{
			Key:          "DATABASE_URL",
			FromDatabase: &renderDatabaseLink{Name: dbName, Property: "connectionString"},
		}
	}

	web := renderService{
		Type:             "web",
		Name:             b.env.AppName + "-web",
		Runtime:          "ruby",
		Plan:             tier,
		BuildCommand:     "./bin/render-build.sh",
		PreDeployCommand: "bundle exec rake db:migrate",
		StartCommand:     "bundle exec puma -C config/puma.rb",
		HealthCheckPath:  "/up",
		EnvVars: []renderEnv{
			databaseURL,
			manualEnv("RAILS_MASTER_KEY"),
			{Key: "WEB_CONCURRENCY", Value: concurrency},
			{Key: "NODE_ENV", Value: "production"},
		},
	}

	if !separateWorker {
		web.EnvVars = append(web.EnvVars, renderEnv{Key: "SOLID_QUEUE_IN_PUMA", Value: "true"})
	}

	if domain := b.cfg.String(config.RenderDomain); domain != "" {
		web.Domains = []string{domain}
		if b.on(config.RenderIncludeWWW) {
			web.Domains = append(web.Domains, "www."+domain)
		}
	}

	doc := renderBlueprint{Services: []renderService{web}}

	if separateWorker {
		doc.Services = append(doc.Services, renderService{
			Type:         "worker",
			Name:         b.env.AppName + "-worker",
			Runtime:      "ruby",
			Plan:         tier,
			BuildCommand: "bundle install",
			StartCommand: "bundle exec rake solid_queue:start",
			EnvVars:      []renderEnv{databaseURL, manualEnv("RAILS_MASTER_KEY")},
		})
	}

	if !supabase {
		doc.Databases = []renderDatabase{{
			Name:         dbName,
			DatabaseName: b.env.AppName + "_production",
			User:         b.env.AppName,
			Plan:         tier,
		}}
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding render.yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding render.yaml: %w", err)
	}

	return buf.String(), nil
}

const pumaPlugin = `
# Run Solid Queue in Puma process (controlled by SOLID_QUEUE_IN_PUMA env var)
# This is used for Render.com deployments without a separate worker service
plugin :solid_queue if ENV["SOLID_QUEUE_IN_PUMA"]
`

func renderStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.Render) {
		return nil, nil
	}

	build, err := b.writeBlueprint("bin/render-build.sh", blueprint.RenderBuildScript)
	if err != nil {
		return nil, err
	}

	doc, err := b.renderYAML()
	if err != nil {
		return nil, err
	}

	ops := []Operation{
		build,
		setExecutable("bin/render-build.sh"),
		writeFile("render.yaml", doc),
	}

	message := "Configure Render.com deployment with separate worker service"

	if !b.on(config.RenderSeparateWorker) {
		message = "Configure Render.com deployment with Puma plugin"

		puma, _ := b.probe.Read("config/puma.rb")
		if !strings.Contains(puma, "plugin :solid_queue") {
			ops = append(ops, appendText("config/puma.rb", pumaPlugin))
		}

		ops = append(ops, insertAfter("config/environments/development.rb", "Rails.application.configure do\n",
			"  # Silence Solid Queue polling logs in development\n"+
				"  config.solid_queue.silence_polling = true\n\n",
			true))
	}

	if b.hasJSON("package.json", "devDependencies", "esbuild") {
		ops = append(ops, editJSON("package.json", false,
			transform.MoveJSON([]string{"devDependencies", "esbuild"}, []string{"dependencies", "esbuild"})))
	}

	checklist, err := b.writeBlueprint("RENDER_DEPLOYMENT.md", blueprint.RenderChecklist)
	if err != nil {
		return nil, err
	}

	ops = append(ops, checklist)

	return &Checkpoint{Name: "render", Message: message, Operations: ops}, nil
}

func ciStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.GitHubActions) {
		return nil, nil
	}

	op, err := b.writeBlueprint(".github/workflows/ci.yml", blueprint.CIWorkflow)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:       "ci",
		Message:    "Configure GitHub Actions CI",
		Operations: []Operation{op},
	}, nil
}

func uuidStep(b *builder) (*Checkpoint, error) {
	if !b.on(config.UseUUID) {
		return nil, nil
	}

	initializer, err := b.writeBlueprint("config/initializers/uuid_primary_key_default.rb", blueprint.UUIDInitializer)
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Name:    "uuid",
		Message: fmt.Sprintf("Configure UUID primary keys (%s)", b.cfg.String(config.UUIDVersion)),
		Operations: []Operation{
			insertAfter("config/application.rb", "config.generators do |g|\n",
				"      g.orm :active_record, primary_key_type: :uuid\n", true),
			initializer,
			insertAfter("app/models/application_record.rb", "  primary_abstract_class\n",
				"\n  self.implicit_order_column = \"created_at\"\n", true),
		},
	}, nil
}
