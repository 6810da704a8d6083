package blueprint

// Names of the bundled blueprint files.
const (
	GemfileAdditions       = "Gemfile.additions"
	DatabaseYAML           = "database.yml"
	SolidMigration         = "solid_migration.rb"
	GoldiloaderInitializer = "goldiloader.rb"
	RenderBuildScript      = "render-build.sh"
	RenderChecklist        = "RENDER_DEPLOYMENT.md"
	CIWorkflow             = "ci.yml"
	UUIDInitializer        = "uuid_primary_key_default.rb"
	WebMockSupport         = "webmock.rb"
	ShouldaSupport         = "shoulda_matchers.rb"
	FactoryBotSupport      = "factory_bot.rb"
	StandardConfig         = "standard.yml"
	HerbConfig             = "herb.yml"
	SkylightConfig         = "skylight.yml"
	AhoyJavaScript         = "ahoy.js"
	BlazerQueries          = "blazer_queries.yml"
	PrettierConfig         = "prettierrc.json"
	PrettierIgnore         = "prettierignore.txt"
	ESLintConfig           = "eslintrc.json"
	StylelintConfig        = "stylelintrc.json"
	ERBLintConfig          = "erb-lint.yml"
	BootstrapVariables     = "bootstrap-variables.scss"
	EnvExample             = "env.example"
	AnnotateConfig         = "annotaterb.yml"
	AnnotateTask           = "auto_annotate_models.rake"
	ERDConfig              = "erdconfig.yml"
	BulletConfig           = "bullet.rb"
	Readme                 = "README.md"
	Contributing           = "CONTRIBUTING.md"
)
