package template_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmpl "github.com/donaldgifford/railsforge/internal/template"
)

func TestRenderString(t *testing.T) {
	t.Parallel()

	r := tmpl.NewRenderer()

	result, err := r.RenderString("Hello {{ .name }}", map[string]any{"name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", result)
}

func TestRenderString_NestedMaps(t *testing.T) {
	t.Parallel()

	r := tmpl.NewRenderer()

	vars := map[string]any{"options": map[string]any{"webmock": true}}

	result, err := r.RenderString(`{{ if .options.webmock }}on{{ end }}`, vars)
	require.NoError(t, err)
	assert.Equal(t, "on", result)
}

func TestRenderString_MissingKey(t *testing.T) {
	t.Parallel()

	r := tmpl.NewRenderer()

	_, err := r.RenderString("Hello {{ .missing }}", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing template")
}

func TestRenderString_InvalidTemplate(t *testing.T) {
	t.Parallel()

	r := tmpl.NewRenderer()

	_, err := r.RenderString("{{ invalid", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing template")
}

func TestRenderFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"files/standard.yml.tmpl": {Data: []byte("ruby_version: {{ .ruby_version }}")},
	}

	r := tmpl.NewRenderer()

	result, err := r.RenderFS(fsys, "files/standard.yml.tmpl", map[string]any{"ruby_version": "3.4"})
	require.NoError(t, err)
	assert.Equal(t, "ruby_version: 3.4", string(result))
}

func TestRenderFS_NotFound(t *testing.T) {
	t.Parallel()

	r := tmpl.NewRenderer()

	_, err := r.RenderFS(fstest.MapFS{}, "missing.tmpl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading template")
}

func TestStripTemplateExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "README.md", tmpl.StripTemplateExtension("README.md.tmpl"))
	assert.Equal(t, "herb.yml", tmpl.StripTemplateExtension("herb.yml"))
}

func TestIsTemplate(t *testing.T) {
	t.Parallel()

	assert.True(t, tmpl.IsTemplate("README.md.tmpl"))
	assert.False(t, tmpl.IsTemplate("herb.yml"))
}
