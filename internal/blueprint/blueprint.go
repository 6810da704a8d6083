// Package blueprint holds the files railsforge writes into a generated app:
// configuration files, initializers, documentation, and the Gemfile block.
// Files are bundled into the binary and may be replaced one by one by a remote
// overlay directory.
package blueprint

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	tmpl "github.com/donaldgifford/railsforge/internal/template"
)

//go:embed files
var bundled embed.FS

const bundledRoot = "files"

// Layer identifies where an entry came from.
type Layer int

const (
	// LayerBundled is a file compiled into the binary.
	LayerBundled Layer = iota

	// LayerOverlay is a file from a fetched overlay directory.
	LayerOverlay
)

// String returns a human-readable name for the layer.
func (l Layer) String() string {
	switch l {
	case LayerBundled:
		return "bundled"
	case LayerOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Entry is one blueprint file.
type Entry struct {
	// Name is the lookup key: the file name without any .tmpl suffix.
	Name string

	// Source is the file name as found, including .tmpl when templated.
	Source string

	Content    string
	Layer      Layer
	IsTemplate bool
}

// Set is the resolved collection of blueprint files for one run.
type Set struct {
	entries  map[string]*Entry
	renderer *tmpl.Renderer
	warnings []error
}

// Bundled returns a Set holding only the files compiled into the binary.
func Bundled() (*Set, error) {
	root, err := fs.Sub(bundled, bundledRoot)
	if err != nil {
		return nil, fmt.Errorf("opening bundled blueprints: %w", err)
	}

	s := &Set{
		entries:  make(map[string]*Entry),
		renderer: tmpl.NewRenderer(),
	}

	if _, err := s.load(root, LayerBundled); err != nil {
		return nil, fmt.Errorf("loading bundled blueprints: %w", err)
	}

	return s, nil
}

// Overlay replaces entries with the files found in fsys, matched by name with
// or without a .tmpl suffix. It returns the number of files applied.
func (s *Set) Overlay(fsys fs.FS) (int, error) {
	return s.load(fsys, LayerOverlay)
}

func (s *Set) load(fsys fs.FS, layer Layer) (int, error) {
	count := 0

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := path.Base(p)

		if d.IsDir() {
			if p != "." && strings.HasPrefix(base, ".") {
				return fs.SkipDir
			}

			return nil
		}

		if strings.HasPrefix(base, ".") {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		name := tmpl.StripTemplateExtension(p)
		s.entries[name] = &Entry{
			Name:       name,
			Source:     p,
			Content:    string(data),
			Layer:      layer,
			IsTemplate: tmpl.IsTemplate(p),
		}
		count++

		return nil
	})
	if err != nil {
		return count, err
	}

	return count, nil
}

// Get returns the entry registered under name.
func (s *Set) Get(name string) (*Entry, bool) {
	e, ok := s.entries[name]

	return e, ok
}

// Names returns every entry name, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Render returns the content of name, executing it with data when the entry
// is a template.
func (s *Set) Render(name string, data map[string]any) (string, error) {
	e, ok := s.entries[name]
	if !ok {
		return "", fmt.Errorf("unknown blueprint file %q", name)
	}

	if !e.IsTemplate {
		return e.Content, nil
	}

	out, err := s.renderer.Render(e.Source, e.Content, data)
	if err != nil {
		return "", fmt.Errorf("rendering blueprint %s (%s): %w", name, e.Layer, err)
	}

	return string(out), nil
}

// Warnings returns the non-fatal problems met while loading the set.
func (s *Set) Warnings() []error {
	return slices.Clone(s.warnings)
}
