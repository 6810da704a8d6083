package create

import "github.com/donaldgifford/railsforge/internal/tree"

// freshPaths are the files of a rails new tree, created with RailsNewArgs,
// that the planner probes.
var freshPaths = []string{
	"Gemfile",
	"Procfile.dev",
	"package.json",
	"yarn.lock",
	"bin/dev",
	"config/puma.rb",
	"config/database.yml",
	"config/cache.yml",
	"config/cable.yml",
	"config/queue.yml",
	"config/application.rb",
	"config/routes.rb",
	"config/environments/development.rb",
	"config/environments/test.rb",
	"config/environments/production.rb",
	"db/cache_schema.rb",
	"db/queue_schema.rb",
	"db/cable_schema.rb",
	"app/models/application_record.rb",
	"app/javascript/application.js",
	"app/assets/stylesheets/application.bootstrap.scss",
}

// freshContent is what rails new writes to the freshPaths whose content the
// planner checks before editing.
var freshContent = map[string]string{
	"package.json":     `{"private":true,"devDependencies":{"esbuild":"^0.25.0"}}`,
	"config/cache.yml": "production:\n  database: cache\n",
	"config/cable.yml": "production:\n  adapter: solid_cable\n  connects_to:\n    database:\n      writing: cable\n",
	"config/environments/production.rb": "Rails.application.configure do\n" +
		"  # config.force_ssl = true\n" +
		"  config.solid_queue.connects_to = { database: { writing: :queue } }\n" +
		"end\n",
}

// freshRailsApp is a probe standing in for a project that does not exist yet.
// Files exist and read as empty apart from freshContent, so content checks see
// a pristine tree.
func freshRailsApp() tree.MapProbe {
	probe := make(tree.MapProbe, len(freshPaths))
	for _, p := range freshPaths {
		probe[p] = freshContent[p]
	}

	return probe
}
