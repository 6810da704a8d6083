package blueprint_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/railsforge/internal/blueprint"
	"github.com/donaldgifford/railsforge/internal/getter"
	"github.com/donaldgifford/railsforge/internal/transform"
)

func TestBundled_ContainsEveryNamedFile(t *testing.T) {
	t.Parallel()

	set, err := blueprint.Bundled()
	require.NoError(t, err)

	for _, name := range []string{
		blueprint.GemfileAdditions, blueprint.DatabaseYAML, blueprint.SolidMigration,
		blueprint.GoldiloaderInitializer, blueprint.RenderBuildScript, blueprint.RenderChecklist,
		blueprint.CIWorkflow, blueprint.UUIDInitializer, blueprint.WebMockSupport,
		blueprint.ShouldaSupport, blueprint.FactoryBotSupport, blueprint.StandardConfig,
		blueprint.HerbConfig, blueprint.SkylightConfig, blueprint.AhoyJavaScript,
		blueprint.BlazerQueries, blueprint.PrettierConfig, blueprint.PrettierIgnore,
		blueprint.ESLintConfig, blueprint.StylelintConfig, blueprint.ERBLintConfig,
		blueprint.BootstrapVariables, blueprint.EnvExample, blueprint.AnnotateConfig,
		blueprint.AnnotateTask, blueprint.ERDConfig, blueprint.BulletConfig,
		blueprint.Readme, blueprint.Contributing,
	} {
		e, ok := set.Get(name)
		require.True(t, ok, "missing bundled file %s", name)
		assert.Equal(t, blueprint.LayerBundled, e.Layer)
	}

	assert.Empty(t, set.Warnings())
}

func TestBundled_StaticStructuredFilesParse(t *testing.T) {
	t.Parallel()

	set, err := blueprint.Bundled()
	require.NoError(t, err)

	for _, name := range set.Names() {
		e, _ := set.Get(name)
		if e.IsTemplate {
			continue
		}

		format := transform.FormatFor(name)
		if format == "" {
			continue
		}

		assert.NoError(t, transform.Validate(format, []byte(e.Content)), name)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	set, err := blueprint.Bundled()
	require.NoError(t, err)

	out, err := set.Render(blueprint.StandardConfig, map[string]any{"ruby_minor": "3.4"})
	require.NoError(t, err)
	assert.Contains(t, out, "ruby_version: 3.4\n")

	static, err := set.Render(blueprint.HerbConfig, nil)
	require.NoError(t, err)
	assert.Contains(t, static, "all: true")

	_, err = set.Render(blueprint.StandardConfig, map[string]any{})
	require.Error(t, err)

	_, err = set.Render("nope.yml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown blueprint file")
}

func TestOverlay_ReplacesByName(t *testing.T) {
	t.Parallel()

	set, err := blueprint.Bundled()
	require.NoError(t, err)

	n, err := set.Overlay(fstest.MapFS{
		"herb.yml":               {Data: []byte("rules:\n  all: false\n")},
		"standard.yml.tmpl":      {Data: []byte("ruby_version: {{ .ruby_minor }}\nparallel: true\n")},
		".git/HEAD":              {Data: []byte("ref: main")},
		".railsforge-cache-meta": {Data: []byte("url: x")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	e, ok := set.Get(blueprint.HerbConfig)
	require.True(t, ok)
	assert.Equal(t, blueprint.LayerOverlay, e.Layer)
	assert.Equal(t, "overlay", e.Layer.String())

	out, err := set.Render(blueprint.StandardConfig, map[string]any{"ruby_minor": "3.3"})
	require.NoError(t, err)
	assert.Equal(t, "ruby_version: 3.3\nparallel: true\n", out)
}

type fakeFetcher struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _, dest string, _ getter.FetchOpts) error {
	f.calls++
	if f.err != nil {
		return f.err
	}

	for name, content := range f.files {
		if err := os.WriteFile(filepath.Join(dest, name), []byte(content), 0o644); err != nil {
			return err
		}
	}

	return nil
}

func TestLoad_NoURLIsBundled(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}

	set, err := blueprint.Load(t.Context(), &blueprint.LoadOpts{Fetcher: f})
	require.NoError(t, err)
	assert.Equal(t, 0, f.calls)

	e, _ := set.Get(blueprint.CIWorkflow)
	assert.Equal(t, blueprint.LayerBundled, e.Layer)
}

func TestLoad_AppliesOverlay(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{files: map[string]string{"ci.yml": "name: Custom CI\n"}}

	set, err := blueprint.Load(t.Context(), &blueprint.LoadOpts{
		URL:     "github.com/acme/rails-blueprints",
		Ref:     "v1",
		Cache:   blueprint.NewCache(t.TempDir(), nil),
		Fetcher: f,
	})
	require.NoError(t, err)
	assert.Empty(t, set.Warnings())

	out, err := set.Render(blueprint.CIWorkflow, nil)
	require.NoError(t, err)
	assert.Equal(t, "name: Custom CI\n", out)
}

func TestLoad_FetchFailureFallsBack(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{err: errors.New("dial tcp: no route to host")}

	set, err := blueprint.Load(t.Context(), &blueprint.LoadOpts{
		URL:     "github.com/acme/rails-blueprints",
		Cache:   blueprint.NewCache(t.TempDir(), nil),
		Fetcher: f,
	})
	require.NoError(t, err)

	warnings := set.Warnings()
	require.Len(t, warnings, 1)

	var fetchErr *blueprint.FetchError
	require.ErrorAs(t, warnings[0], &fetchErr)
	assert.Equal(t, "github.com/acme/rails-blueprints", fetchErr.URL)
	assert.Contains(t, fetchErr.Error(), "no route to host")

	e, _ := set.Get(blueprint.CIWorkflow)
	assert.Equal(t, blueprint.LayerBundled, e.Layer)
}
