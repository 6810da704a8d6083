package transform

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// Structured formats understood by Validate.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatEnv  = "dotenv"
)

// FormatFor returns the structured format implied by a file name, or "" for
// plain text.
func FormatFor(path string) string {
	base := path[strings.LastIndex(path, "/")+1:]

	switch {
	case strings.HasSuffix(base, ".json") || base == ".prettierrc":
		return FormatJSON
	case strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml") || base == ".erdconfig":
		return FormatYAML
	case base == ".env" || strings.HasPrefix(base, ".env."):
		return FormatEnv
	default:
		return ""
	}
}

// Validate parses data in the given format and returns a MalformedArtifactError
// if it does not parse. Unknown formats are accepted.
func Validate(format string, data []byte) error {
	var err error

	switch format {
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			err = errors.New("invalid JSON document")
		}
	case FormatYAML:
		var doc yaml.Node
		err = yaml.Unmarshal(data, &doc)
	case FormatEnv:
		_, err = godotenv.UnmarshalBytes(data)
	default:
		return nil
	}

	if err != nil {
		return &MalformedArtifactError{Format: format, Err: err}
	}

	return nil
}

// JSONMutation is a single parse-modify-serialize edit of a JSON document.
// Set writes Value at Path; Move relocates the value at From to Path. Paths are
// key segments, so names containing dots need no escaping.
type JSONMutation struct {
	Path  []string
	Value any
	From  []string
}

// SetJSON returns a mutation that sets path to value.
func SetJSON(value any, path ...string) JSONMutation {
	return JSONMutation{Path: path, Value: value}
}

// MoveJSON returns a mutation that moves the value at from to to.
func MoveJSON(from, to []string) JSONMutation {
	return JSONMutation{From: from, Path: to}
}

// EditJSON applies mutations in order, preserving key order, and re-indents the
// result with two spaces. A Move whose source is absent is an AnchorNotFound
// error when required and skipped otherwise.
func EditJSON(data []byte, mutations []JSONMutation, required bool) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, &MalformedArtifactError{Format: FormatJSON, Err: errors.New("invalid JSON document")}
	}

	out := data

	for _, m := range mutations {
		var err error

		out, err = applyJSON(out, m, required)
		if err != nil {
			return nil, err
		}
	}

	return pretty.PrettyOptions(out, &pretty.Options{Width: 1, Indent: "  "}), nil
}

func applyJSON(data []byte, m JSONMutation, required bool) ([]byte, error) {
	dest := jsonPath(m.Path)

	if m.From == nil {
		out, err := sjson.SetBytes(data, dest, m.Value)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", dest, err)
		}

		return out, nil
	}

	src := jsonPath(m.From)

	value := gjson.GetBytes(data, src)
	if !value.Exists() {
		if required {
			return nil, notFound(src)
		}

		return data, nil
	}

	out, err := sjson.SetRawBytes(data, dest, []byte(value.Raw))
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", dest, err)
	}

	out, err = sjson.DeleteBytes(out, src)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", src, err)
	}

	return out, nil
}

// HasJSON reports whether data is valid JSON with a value at path.
func HasJSON(data []byte, path ...string) bool {
	return gjson.ValidBytes(data) && gjson.GetBytes(data, jsonPath(path)).Exists()
}

// jsonPath joins key segments into a gjson path, escaping path syntax.
func jsonPath(segments []string) string {
	escaper := strings.NewReplacer(`.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`)

	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = escaper.Replace(s)
	}

	return strings.Join(parts, ".")
}

// YAMLMutation is a single edit of a YAML mapping. Delete removes the key at
// Path; otherwise Value is set at Path, creating intermediate mappings.
type YAMLMutation struct {
	Path   []string
	Value  string
	Delete bool
}

// DeleteYAML returns a mutation that removes the key at path.
func DeleteYAML(path ...string) YAMLMutation {
	return YAMLMutation{Path: path, Delete: true}
}

// SetYAML returns a mutation that sets a scalar at path.
func SetYAML(value string, path ...string) YAMLMutation {
	return YAMLMutation{Path: path, Value: value}
}

// EditYAML applies mutations to a YAML document through its node tree, which
// keeps comments, anchors, aliases, and merge keys intact. A deletion whose key
// is absent is an AnchorNotFound error when required and skipped otherwise.
func EditYAML(data []byte, mutations []YAMLMutation, required bool) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedArtifactError{Format: FormatYAML, Err: err}
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &MalformedArtifactError{Format: FormatYAML, Err: errors.New("document root is not a mapping")}
	}

	root := doc.Content[0]

	for _, m := range mutations {
		if err := applyYAML(root, m, required); err != nil {
			return nil, err
		}
	}

	untagMerges(&doc)

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}

	if !bytes.Contains(data, []byte("\n\n")) {
		return buf.Bytes(), nil
	}

	return spaceSections(buf.Bytes()), nil
}

// untagMerges clears the explicit !!merge tag the decoder puts on "<<" keys,
// which the encoder would otherwise print.
func untagMerges(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if key := n.Content[i]; key.Value == "<<" && key.ShortTag() == "!!merge" {
				key.Tag = ""
			}
		}
	}

	for _, c := range n.Content {
		untagMerges(c)
	}
}

// spaceSections puts back the blank line the encoder drops before each
// top-level key after the first, keeping any head comment with its key.
func spaceSections(out []byte) []byte {
	lines := strings.Split(string(out), "\n")
	spaced := make([]string, 0, len(lines))
	seen := false

	for _, l := range lines {
		if topLevelKey(l) {
			if seen {
				at := len(spaced)
				for at > 0 && strings.HasPrefix(spaced[at-1], "#") {
					at--
				}

				if at > 0 && spaced[at-1] != "" {
					spaced = append(spaced[:at], append([]string{""}, spaced[at:]...)...)
				}
			}

			seen = true
		}

		spaced = append(spaced, l)
	}

	return []byte(strings.Join(spaced, "\n"))
}

func topLevelKey(line string) bool {
	if line == "" || line == "---" || line == "..." {
		return false
	}

	switch line[0] {
	case ' ', '\t', '#', '-':
		return false
	}

	return strings.Contains(line, ":")
}

func applyYAML(root *yaml.Node, m YAMLMutation, required bool) error {
	if len(m.Path) == 0 {
		return errors.New("yaml mutation has an empty path")
	}

	parent := root

	for _, key := range m.Path[:len(m.Path)-1] {
		child := mappingValue(parent, key)
		if child == nil {
			if m.Delete {
				return missingYAML(m.Path, required)
			}

			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			parent.Content = append(parent.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}

		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("yaml key %q is not a mapping", key)
		}

		parent = child
	}

	last := m.Path[len(m.Path)-1]

	if m.Delete {
		for i := 0; i+1 < len(parent.Content); i += 2 {
			if parent.Content[i].Value == last {
				parent.Content = append(parent.Content[:i], parent.Content[i+2:]...)

				return nil
			}
		}

		return missingYAML(m.Path, required)
	}

	if existing := mappingValue(parent, last); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = "!!str"
		existing.Style = 0
		existing.Value = m.Value
		existing.Content = nil

		return nil
	}

	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: last},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Value})

	return nil
}

// HasYAML reports whether data is a YAML mapping with a key at path.
func HasYAML(data []byte, path ...string) bool {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 || len(path) == 0 {
		return false
	}

	node := doc.Content[0]
	for _, key := range path {
		if node.Kind != yaml.MappingNode {
			return false
		}

		if node = mappingValue(node, key); node == nil {
			return false
		}
	}

	return true
}

// mappingValue returns the value node for key in a mapping, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}

	return nil
}

func missingYAML(path []string, required bool) error {
	if required {
		return notFound(strings.Join(path, "."))
	}

	return nil
}
