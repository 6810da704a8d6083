// Package info displays the details of a single option.
package info

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/railsforge/internal/config"
)

// Opts configures the info command.
type Opts struct {
	// Name is the option to describe.
	Name string
	// Defaults are selections from the global config.
	Defaults map[string]string
	// Writer is the output destination.
	Writer io.Writer
	// OutputFormat is "text" or "json".
	OutputFormat string
}

// Details is an option together with the options that depend on it.
type Details struct {
	config.Option

	// Configured is the global config default, if any.
	Configured string `json:"configured,omitempty"`
	// Dependents only take effect when this option is true.
	Dependents []string `json:"dependents,omitempty"`
}

// Run displays option information.
func Run(opts *Opts) error {
	d, err := Describe(opts.Name, opts.Defaults)
	if err != nil {
		return err
	}

	switch opts.OutputFormat {
	case "json":
		enc := json.NewEncoder(opts.Writer)
		enc.SetIndent("", "  ")

		return enc.Encode(d)
	default:
		return renderText(opts.Writer, d)
	}
}

// Describe looks up name in the option table.
func Describe(name string, defaults map[string]string) (*Details, error) {
	opt, ok := config.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown option %q (see railsforge options)", name)
	}

	d := &Details{Option: opt, Configured: defaults[name]}

	for _, o := range config.Options() {
		if o.DependsOn == name {
			d.Dependents = append(d.Dependents, o.Name)
		}
	}

	return d, nil
}

func renderText(w io.Writer, d *Details) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rows := [][2]string{
		{"Name", d.Name},
		{"Group", d.Group},
		{"Type", string(d.Type)},
		{"Prompt", d.Title},
		{"Description", d.Description},
		{"Default", quoteEmpty(d.Default)},
	}

	if d.Configured != "" {
		rows = append(rows, [2]string{"Configured", d.Configured})
	}

	if len(d.Choices) > 0 {
		rows = append(rows, [2]string{"Choices", strings.Join(d.Choices, ", ")})
	}

	if d.DependsOn != "" {
		rows = append(rows, [2]string{"Depends on", d.DependsOn})
	}

	if d.Validate != "" {
		rows = append(rows, [2]string{"Pattern", d.Validate})
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if len(d.Dependents) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "\nDependents:"); err != nil {
		return err
	}

	for _, name := range d.Dependents {
		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}

	return nil
}

func quoteEmpty(s string) string {
	if s == "" {
		return `""`
	}

	return s
}
