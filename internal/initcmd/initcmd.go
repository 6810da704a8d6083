// Package initcmd implements the railsforge init command, which writes a
// starter selections file or global config.
package initcmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/railsforge/internal/config"
)

// DefaultSelectionsFile is the file name written when Path is a directory.
const DefaultSelectionsFile = "railsforge.yaml"

// Opts configures the init operation.
type Opts struct {
	// Path is a directory or a .yaml file. Empty means the current directory.
	// Ignored in global mode unless set.
	Path string
	// Global writes the global config instead of a selections file.
	Global bool
	// Defaults replace built-in defaults in the selections file.
	Defaults map[string]string
	// Force overwrites an existing file.
	Force bool
}

const globalTemplate = `# railsforge global configuration.

# Option selections applied before --selections and --set.
defaults: {}

# Remote template overlay, any go-getter source.
template_url: ""
template_ref: ""

# Where remote templates are cached. Empty uses the user cache directory.
cache_dir: ""

git:
  author_name: %q
  author_email: %q

hooks:
  # Run with sh -c inside the new app after the last checkpoint.
  post_generate: []
`

// Run executes the init workflow and returns the written path.
func Run(opts *Opts) (string, error) {
	if opts.Global {
		return initGlobal(opts)
	}

	return initSelections(opts)
}

func initSelections(opts *Opts) (string, error) {
	path := selectionsPath(opts.Path)

	data, err := Selections(opts.Defaults)
	if err != nil {
		return "", err
	}

	if err := writeFile(path, data, opts.Force); err != nil {
		return "", err
	}

	return path, nil
}

func initGlobal(opts *Opts) (string, error) {
	path := opts.Path
	if path == "" {
		path = config.DefaultConfigPath()
	}

	content := fmt.Sprintf(globalTemplate, config.DefaultAuthorName, config.DefaultAuthorEmail)

	if err := writeFile(path, []byte(content), opts.Force); err != nil {
		return "", err
	}

	return path, nil
}

func selectionsPath(path string) string {
	if path == "" {
		return DefaultSelectionsFile
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return path
	default:
		return filepath.Join(path, DefaultSelectionsFile)
	}
}

func writeFile(path string, data []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // selections are not secret
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// Selections renders a selections file listing every option with its
// default, annotated with the prompt title and allowed values.
func Selections(defaults map[string]string) ([]byte, error) {
	options := &yaml.Node{Kind: yaml.MappingNode}

	group := ""

	for _, o := range config.Options() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: o.Name, HeadComment: optionComment(&o)}
		if o.Group != group {
			group = o.Group
			key.HeadComment = "--- " + group + " ---\n" + key.HeadComment
		}

		value := o.Default
		if v, ok := defaults[o.Name]; ok {
			value = v
		}

		val := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
		if value == "" {
			val.Style = yaml.DoubleQuotedStyle
		}

		options.Content = append(options.Content, key, val)
	}

	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{
				Kind:        yaml.ScalarNode,
				Value:       "options",
				HeadComment: "railsforge selections. Use with: railsforge new APP --selections FILE",
			},
			options,
		},
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding selections: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding selections: %w", err)
	}

	return buf.Bytes(), nil
}

func optionComment(o *config.Option) string {
	lines := []string{o.Title}

	if len(o.Choices) > 0 {
		lines = append(lines, "one of: "+strings.Join(o.Choices, ", "))
	}

	if o.DependsOn != "" {
		lines = append(lines, "only used when "+o.DependsOn+" is true")
	}

	return strings.Join(lines, "\n")
}
