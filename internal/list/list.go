// Package list implements the railsforge options command for browsing the
// option table.
package list

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/railsforge/internal/config"
)

// Opts configures the list operation.
type Opts struct {
	// Group limits output to options in this group.
	Group string
	// Query matches option names, titles, and descriptions.
	Query string
	// Defaults are selections from the global config shown in place of the
	// built-in defaults.
	Defaults map[string]string
	// OutputFormat is "table" or "json".
	OutputFormat string
	// Writer is the output destination.
	Writer io.Writer
}

// OptionInfo represents an option in list output.
type OptionInfo struct {
	Name        string   `json:"name"`
	Group       string   `json:"group"`
	Type        string   `json:"type"`
	Default     string   `json:"default"`
	Choices     []string `json:"choices,omitempty"`
	DependsOn   string   `json:"depends_on,omitempty"`
	Description string   `json:"description"`
	// Configured is true when Default comes from the user's config.
	Configured bool `json:"configured,omitempty"`
}

// Run lists the options that match the filters.
func Run(opts *Opts) error {
	infos := Collect(opts)

	switch opts.OutputFormat {
	case "json":
		return renderJSON(opts.Writer, infos)
	default:
		return renderTable(opts.Writer, infos)
	}
}

// Collect returns the filtered options in declaration order.
func Collect(opts *Opts) []OptionInfo {
	var infos []OptionInfo

	q := strings.ToLower(opts.Query)

	for _, o := range config.Options() {
		if opts.Group != "" && !strings.EqualFold(o.Group, opts.Group) {
			continue
		}

		if q != "" && !matches(&o, q) {
			continue
		}

		info := OptionInfo{
			Name:        o.Name,
			Group:       o.Group,
			Type:        string(o.Type),
			Default:     o.Default,
			Choices:     o.Choices,
			DependsOn:   o.DependsOn,
			Description: o.Description,
		}

		if v, ok := opts.Defaults[o.Name]; ok {
			info.Default = v
			info.Configured = true
		}

		infos = append(infos, info)
	}

	return infos
}

func matches(o *config.Option, query string) bool {
	for _, field := range []string{o.Name, o.Title, o.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}

	return false
}

func renderTable(w io.Writer, infos []OptionInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "NAME\tGROUP\tTYPE\tDEFAULT\tDEPENDS ON\tDESCRIPTION"); err != nil {
		return err
	}

	for i := range infos {
		o := &infos[i]

		typ := o.Type
		if len(o.Choices) > 0 {
			typ = fmt.Sprintf("%s(%s)", o.Type, strings.Join(o.Choices, "|"))
		}

		def := o.Default
		if def == "" {
			def = `""`
		}

		if o.Configured {
			def += "*"
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Name, o.Group, typ, def, o.DependsOn, o.Description); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func renderJSON(w io.Writer, infos []OptionInfo) error {
	if infos == nil {
		infos = []OptionInfo{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(infos)
}
