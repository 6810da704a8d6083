package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
)

// Renderer renders blueprint files as Go text/templates with the railsforge
// function map. Missing keys are errors, never "<no value>".
type Renderer struct {
	funcMap template.FuncMap
}

// NewRenderer creates a Renderer with the standard function map.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: FuncMap(),
	}
}

// RenderFS reads name from fsys and renders it with the given variables.
func (r *Renderer) RenderFS(fsys fs.FS, name string, vars map[string]any) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}

	return r.Render(path.Base(name), string(data), vars)
}

// RenderString renders an inline template string with the given variables.
func (r *Renderer) RenderString(tmpl string, vars map[string]any) (string, error) {
	result, err := r.Render("inline", tmpl, vars)
	if err != nil {
		return "", err
	}

	return string(result), nil
}

// Render parses text under name and executes it with vars.
func (r *Renderer) Render(name, text string, vars map[string]any) ([]byte, error) {
	tmpl, err := template.New(name).
		Funcs(r.funcMap).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("executing template %q: %w", name, err)
	}

	return buf.Bytes(), nil
}

// StripTemplateExtension removes the .tmpl extension from a filename.
func StripTemplateExtension(name string) string {
	return strings.TrimSuffix(name, ".tmpl")
}

// IsTemplate returns true if the name ends with .tmpl.
func IsTemplate(name string) bool {
	return strings.HasSuffix(name, ".tmpl")
}
