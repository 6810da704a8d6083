package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/donaldgifford/railsforge/internal/config"
	"github.com/donaldgifford/railsforge/internal/secrets"
	"github.com/donaldgifford/railsforge/internal/template"
	"github.com/donaldgifford/railsforge/internal/transform"
	"github.com/donaldgifford/railsforge/internal/tree"
)

// SecretBlazerPassword names the Blazer dashboard password in the secret store.
const SecretBlazerPassword = "blazer_password"

// BlazerUsername is the Blazer dashboard user written to .env.
const BlazerUsername = "admin"

// builder carries the inputs shared by every step.
type builder struct {
	cfg   *config.Resolved
	probe tree.Probe
	env   *Env

	rubyVersion  string
	railsVersion string
	nodeVersion  string

	// data is the template context shared by every blueprint file.
	data map[string]any
}

func newBuilder(cfg *config.Resolved, probe tree.Probe, env *Env) (*builder, error) {
	b := &builder{
		cfg:          cfg,
		probe:        probe,
		env:          env,
		rubyVersion:  orDefault(env.RubyVersion, DefaultRubyVersion),
		railsVersion: orDefault(env.RailsVersion, DefaultRailsVersion),
		nodeVersion:  orDefault(env.NodeVersion, DefaultNodeVersion),
	}

	b.data = map[string]any{
		"app_name":            env.AppName,
		"app_title":           template.Titleize(env.AppName),
		"options":             cfg.Values(),
		"ruby_minor":          majorMinor(b.rubyVersion),
		"migration_version":   majorMinor(b.railsVersion),
		"uuid_function":       uuidFunction(cfg),
		"blazer_username":     BlazerUsername,
		"blazer_password":     "",
		"blazer_database_url": b.databaseURL(),
		"render":              b.renderData(),
		"readme":              b.readmeData(),
	}

	if b.on(config.AhoyBlazer) {
		if existing := b.dotenv()["BLAZER_PASSWORD"]; existing != "" {
			env.Secrets.Reuse(SecretBlazerPassword, "Blazer password", existing)
		}

		password, err := env.Secrets.Alphanumeric(SecretBlazerPassword, "Blazer password", secrets.DefaultLength)
		if err != nil {
			return nil, fmt.Errorf("generating blazer password: %w", err)
		}

		b.data["blazer_password"] = password
	}

	return b, nil
}

// dotenv returns the variables of an existing .env, so a re-run keeps the
// credentials it generated the first time.
func (b *builder) dotenv() map[string]string {
	content, ok := b.probe.Read(".env")
	if !ok {
		return nil
	}

	vars, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil
	}

	return vars
}

func (b *builder) on(option string) bool {
	return b.cfg.Bool(option)
}

// render renders a blueprint file against the shared data plus extra keys.
func (b *builder) render(name string, extra map[string]any) (string, error) {
	data := b.data
	if len(extra) > 0 {
		data = make(map[string]any, len(b.data)+len(extra))
		for k, v := range b.data {
			data[k] = v
		}

		for k, v := range extra {
			data[k] = v
		}
	}

	out, err := b.env.Templates.Render(name, data)
	if err != nil {
		return "", fmt.Errorf("building %s: %w", name, err)
	}

	return out, nil
}

// writeBlueprint renders name and writes it to path.
func (b *builder) writeBlueprint(path, name string) (Operation, error) {
	content, err := b.render(name, nil)
	if err != nil {
		return Operation{}, err
	}

	return writeFile(path, content), nil
}

func (b *builder) databaseURL() string {
	if b.env.DatabaseURL != "" {
		return b.env.DatabaseURL
	}

	return "postgresql://localhost/" + b.env.AppName + "_development"
}

var gemLine = regexp.MustCompile(`^\s*gem\s+["']([^"']+)["']`)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// declaredGems returns the names of the gems a Gemfile declares.
func declaredGems(gemfile string) map[string]bool {
	declared := make(map[string]bool)

	for _, line := range strings.Split(gemfile, "\n") {
		if m := gemLine.FindStringSubmatch(line); m != nil {
			declared[m[1]] = true
		}
	}

	return declared
}

// undeclaredGems drops the gem lines of additions that gemfile already
// declares, along with any group left empty. It returns "" when nothing is
// left to add.
func undeclaredGems(additions, gemfile string) string {
	declared := declaredGems(gemfile)

	var out, group []string

	inGroup := false

	for _, line := range strings.Split(additions, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "group ") && strings.HasSuffix(trimmed, " do"):
			inGroup, group = true, []string{line}
		case inGroup && trimmed == "end":
			inGroup = false

			if len(group) > 1 {
				out = append(out, group...)
				out = append(out, line)
			}
		default:
			if m := gemLine.FindStringSubmatch(line); m != nil && declared[m[1]] {
				continue
			}

			if inGroup {
				group = append(group, line)
			} else {
				out = append(out, line)
			}
		}
	}

	text := strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(out, "\n"), "\n\n"))
	if text == "" {
		return ""
	}

	return "\n" + text + "\n"
}

// pending reports whether an edit matching expr still has work to do in path.
// A file that does not exist yet is assumed to be produced by an earlier
// command in the plan.
func (b *builder) pending(path, expr string) bool {
	content, ok := b.probe.Read(path)
	if !ok {
		return true
	}

	return regexp.MustCompile(expr).MatchString(content)
}

// hasYAML reports whether the YAML file at path has a key at keys.
func (b *builder) hasYAML(path string, keys ...string) bool {
	content, ok := b.probe.Read(path)

	return ok && transform.HasYAML([]byte(content), keys...)
}

// hasJSON reports whether the JSON file at path has a value at keys.
func (b *builder) hasJSON(path string, keys ...string) bool {
	content, ok := b.probe.Read(path)

	return ok && transform.HasJSON([]byte(content), keys...)
}

func (b *builder) renderData() map[string]any {
	free := b.on(config.RenderFreeTier)

	tier, concurrency := "starter", "2"
	if free {
		tier, concurrency = "free", "0"
	}

	return map[string]any{
		"free_tier":       free,
		"supabase":        b.cfg.String(config.RenderDatabaseProvider) == config.ProviderSupabase,
		"separate_worker": b.on(config.RenderSeparateWorker),
		"domain":          b.cfg.String(config.RenderDomain),
		"include_www":     b.on(config.RenderIncludeWWW),
		"web_concurrency": concurrency,
		"db_plan":         tier,
		"service_plan":    tier,
		"web_service":     b.env.AppName + "-web",
		"worker_service":  b.env.AppName + "-worker",
		"database":        b.env.AppName + "-db",
	}
}

func uuidFunction(cfg *config.Resolved) string {
	if cfg.String(config.UUIDVersion) == "v4" {
		return "uuidv4()"
	}

	return "uuidv7()"
}

func orDefault(v, fallback string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return fallback
	}

	return v
}

// majorMinor reduces "3.4.1" to "3.4".
func majorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}

	return parts[0] + "." + parts[1]
}

// Operation constructors.

func writeFile(path, content string) Operation {
	return Operation{Kind: KindWriteFile, Path: path, Content: content}
}

func deleteFile(path string) Operation {
	return Operation{Kind: KindDeleteFile, Path: path}
}

func deleteDir(path string) Operation {
	return Operation{Kind: KindDeleteDir, Path: path}
}

func appendText(path, text string) Operation {
	return Operation{Kind: KindAppendText, Path: path, Content: text}
}

func insertAfter(path, anchor, text string, required bool) Operation {
	return Operation{
		Kind:       KindInsertText,
		Path:       path,
		Anchor:     anchor,
		Content:    text,
		Placement:  transform.After,
		Occurrence: transform.First,
		Required:   required,
	}
}

func insertBeforeLast(path, anchor, text string, required bool) Operation {
	return Operation{
		Kind:       KindInsertText,
		Path:       path,
		Anchor:     anchor,
		Content:    text,
		Placement:  transform.Before,
		Occurrence: transform.Last,
		Required:   required,
	}
}

func replaceLiteral(path, old, replacement string, required bool) Operation {
	return Operation{Kind: KindReplaceText, Path: path, Pattern: old, Content: replacement, Required: required}
}

func replaceRegexp(path, expr, replacement string, required bool) Operation {
	return Operation{
		Kind:     KindReplaceText,
		Path:     path,
		Pattern:  expr,
		Regexp:   true,
		Content:  replacement,
		Required: required,
	}
}

func uncomment(path, expr string, required bool) Operation {
	return Operation{Kind: KindUncomment, Path: path, Pattern: expr, Regexp: true, Required: required}
}

func setExecutable(path string) Operation {
	return Operation{Kind: KindSetExecutable, Path: path, Mode: 0o755}
}

func rewrite(path, name string) Operation {
	return Operation{Kind: KindRewriteFile, Path: path, Transform: name}
}

func editJSON(path string, required bool, muts ...transform.JSONMutation) Operation {
	return Operation{Kind: KindEditJSON, Path: path, JSON: muts, Required: required}
}

func editYAML(path string, required bool, muts ...transform.YAMLMutation) Operation {
	return Operation{Kind: KindEditYAML, Path: path, YAML: muts, Required: required}
}

func run(argv ...string) Operation {
	return Operation{Kind: KindRunCommand, Argv: argv}
}

func tryRun(argv ...string) Operation {
	op := run(argv...)
	op.BestEffort = true

	return op
}

func rails(args ...string) Operation {
	return run(append([]string{"bin/rails"}, args...)...)
}

func generate(generator string, args ...string) Operation {
	return rails(append([]string{"generate", generator}, args...)...)
}
