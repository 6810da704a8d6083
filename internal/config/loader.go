package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SelectionsFile is the on-disk form of an explicit option selection.
type SelectionsFile struct {
	Options map[string]yaml.Node `yaml:"options"`
}

// LoadSelections reads a selections file and returns its options as raw
// strings, ready to be merged with --set overrides. Non-scalar values are rejected.
func LoadSelections(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the caller; this is a scaffolding tool that reads user-specified config files
	if err != nil {
		return nil, fmt.Errorf("reading selections file %s: %w", path, err)
	}

	return ParseSelections(data)
}

// ParseSelections decodes selections YAML.
func ParseSelections(data []byte) (map[string]string, error) {
	var file SelectionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing selections: %w", err)
	}

	out := make(map[string]string, len(file.Options))

	names := make([]string, 0, len(file.Options))
	for name := range file.Options {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		node := file.Options[name]
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("selections: option %q must be a scalar value", name)
		}

		if node.Tag == "!!null" {
			out[name] = ""

			continue
		}

		out[name] = node.Value
	}

	return out, nil
}

// MergeSelections layers selection maps; later maps win.
func MergeSelections(layers ...map[string]string) map[string]string {
	out := make(map[string]string)

	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}

	return out
}
