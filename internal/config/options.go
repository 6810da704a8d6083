// Package config defines the railsforge option table, resolved selections, and
// the user configuration files that seed them.
package config

// OptionType is the value domain of an Option.
type OptionType string

// Option types.
const (
	TypeBool   OptionType = "bool"
	TypeEnum   OptionType = "enum"
	TypeString OptionType = "string"
)

// Option names. Plan code refers to options through these constants so that a
// renamed option fails to compile instead of silently resolving to a default.
const (
	Simplecov              = "simplecov"
	Shoulda                = "shoulda"
	Faker                  = "faker"
	Webmock                = "webmock"
	Goldiloader            = "goldiloader"
	RackProfiler           = "rack_profiler"
	Skylight               = "skylight"
	AhoyBlazer             = "ahoy_blazer"
	RailsERD               = "rails_erd"
	RailsDB                = "rails_db"
	ErrorMonitoring        = "error_monitoring"
	BootstrapOverrides     = "bootstrap_overrides"
	FullLinting            = "full_linting"
	UseUUID                = "use_uuid"
	UUIDVersion            = "uuid_version"
	MultiDatabase          = "multi_database"
	Render                 = "render"
	RenderFreeTier         = "render_free_tier"
	RenderDatabaseProvider = "render_database_provider"
	RenderSeparateWorker   = "render_separate_worker"
	RenderDomain           = "render_domain"
	RenderIncludeWWW       = "render_include_www"
	GitHubActions          = "github_actions"
)

// Error monitoring providers.
const (
	MonitorRollbar     = "rollbar"
	MonitorHoneybadger = "honeybadger"
	MonitorNone        = "none"
)

// Render database providers.
const (
	ProviderSupabase = "supabase"
	ProviderRender   = "render"
)

// Option describes a single configurable setting.
type Option struct {
	Name        string     `yaml:"name" json:"name"`
	Group       string     `yaml:"group" json:"group"`
	Type        OptionType `yaml:"type" json:"type"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Choices     []string   `yaml:"choices,omitempty" json:"choices,omitempty"`
	Default     string     `yaml:"default" json:"default"`
	// DependsOn names a bool option that must be true for this option to have effect.
	DependsOn string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	// Validate is a regular expression string values must match.
	Validate string `yaml:"validate,omitempty" json:"validate,omitempty"`
}

// domainPattern accepts an empty string or a lowercase hostname with at least one dot.
const domainPattern = `^$|^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`

// table is the single declaration of every option, in prompt order.
var table = []Option{
	{Name: Simplecov, Group: "testing", Type: TypeBool, Default: "true",
		Title: "Include SimpleCov for code coverage?", Description: "Code coverage"},
	{Name: Shoulda, Group: "testing", Type: TypeBool, Default: "true",
		Title: "Include Shoulda Matchers for one-liner tests?", Description: "One-liner tests"},
	{Name: Faker, Group: "testing", Type: TypeBool, Default: "true",
		Title: "Include Faker for test data generation?", Description: "Test data generation"},
	{Name: Webmock, Group: "testing", Type: TypeBool, Default: "false",
		Title: "Include WebMock for HTTP request stubbing?", Description: "HTTP stubbing"},

	{Name: Goldiloader, Group: "performance", Type: TypeBool, Default: "true",
		Title: "Include Goldiloader for automatic N+1 prevention?", Description: "Auto N+1 prevention"},
	{Name: RackProfiler, Group: "performance", Type: TypeBool, Default: "true",
		Title: "Include rack-mini-profiler for a development performance bar?", Description: "Development performance bar"},
	{Name: Skylight, Group: "performance", Type: TypeBool, Default: "true",
		Title: "Include Skylight for production performance monitoring?", Description: "Production performance monitoring"},

	{Name: AhoyBlazer, Group: "analytics", Type: TypeBool, Default: "true",
		Title: "Include Ahoy + Blazer for analytics tracking and dashboard?", Description: "Analytics tracking and dashboard"},

	{Name: RailsERD, Group: "documentation", Type: TypeBool, Default: "true",
		Title: "Include Rails ERD for entity relationship diagrams?", Description: "Entity diagrams"},
	{Name: RailsDB, Group: "documentation", Type: TypeBool, Default: "false",
		Title: "Include rails_db for a web-based database UI?", Description: "Database web UI"},

	{Name: ErrorMonitoring, Group: "monitoring", Type: TypeEnum, Default: MonitorRollbar,
		Choices: []string{MonitorRollbar, MonitorHoneybadger, MonitorNone},
		Title:   "Choose an error monitoring service", Description: "Error tracking"},

	{Name: BootstrapOverrides, Group: "frontend", Type: TypeBool, Default: "true",
		Title: "Include a Bootstrap overrides file for easy customization?", Description: "Custom Sass variables file"},
	{Name: FullLinting, Group: "frontend", Type: TypeBool, Default: "false",
		Title: "Include the full JS/CSS linting stack (Prettier, ESLint, Stylelint)?", Description: "Prettier, ESLint, Stylelint"},

	{Name: UseUUID, Group: "database", Type: TypeBool, Default: "false",
		Title: "Use UUIDs for primary keys instead of integers?", Description: "UUID primary keys"},
	{Name: UUIDVersion, Group: "database", Type: TypeEnum, Default: "v7", DependsOn: UseUUID,
		Choices: []string{"v7", "v4"},
		Title:   "UUID version (v7 is time-ordered, v4 is random)", Description: "UUID version"},
	{Name: MultiDatabase, Group: "database", Type: TypeBool, Default: "false",
		Title: "Use the multi-database setup (separate DBs for cache/queue/cable)?", Description: "Separate cache/queue/cable databases"},

	{Name: Render, Group: "deployment", Type: TypeBool, Default: "false",
		Title: "Configure for Render.com deployment (build script + render.yaml)?", Description: "Render.com deployment"},
	{Name: RenderFreeTier, Group: "deployment", Type: TypeBool, Default: "true", DependsOn: Render,
		Title: "Use the Render free tier?", Description: "Free tier (512MB RAM)"},
	{Name: RenderDatabaseProvider, Group: "deployment", Type: TypeEnum, Default: ProviderSupabase, DependsOn: Render,
		Choices: []string{ProviderSupabase, ProviderRender},
		Title:   "Database provider", Description: "Production database provider"},
	{Name: RenderSeparateWorker, Group: "deployment", Type: TypeBool, Default: "false", DependsOn: Render,
		Title: "Run background jobs in a separate worker service?", Description: "Separate worker service"},
	{Name: RenderDomain, Group: "deployment", Type: TypeString, Default: "", DependsOn: Render,
		Validate: domainPattern,
		Title:    "Production domain (leave empty if unknown)", Description: "Custom domain"},
	{Name: RenderIncludeWWW, Group: "deployment", Type: TypeBool, Default: "false", DependsOn: Render,
		Title: "Also configure the www subdomain?", Description: "www subdomain"},

	{Name: GitHubActions, Group: "ci", Type: TypeBool, Default: "true",
		Title: "Include a GitHub Actions CI workflow?", Description: "GitHub Actions CI"},
}

// Options returns a copy of the option table in declaration order.
func Options() []Option {
	out := make([]Option, len(table))
	for i := range table {
		out[i] = table[i]
		out[i].Choices = append([]string(nil), table[i].Choices...)
	}

	return out
}

// Lookup returns the option with the given name.
func Lookup(name string) (Option, bool) {
	for i := range table {
		if table[i].Name == name {
			return table[i], true
		}
	}

	return Option{}, false
}

// HasChoice reports whether value is one of the option's allowed values.
func (o *Option) HasChoice(value string) bool {
	for _, c := range o.Choices {
		if c == value {
			return true
		}
	}

	return false
}
