package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write prints p to w as an indented listing or as JSON.
func Write(w io.Writer, p *Plan, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(p)
	case FormatText, "":
		return writeText(w, p)
	default:
		return fmt.Errorf("unknown plan format %q", format)
	}
}

func writeText(w io.Writer, p *Plan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i := range p.Checkpoints {
		cp := &p.Checkpoints[i]

		if _, err := fmt.Fprintf(tw, "%d. %s\t%q\n", i+1, cp.Name, cp.Message); err != nil {
			return err
		}

		for j := range cp.Operations {
			op := &cp.Operations[j]

			flag := ""
			if op.Required {
				flag = "required"
			}

			if _, err := fmt.Fprintf(tw, "   - %s\t%s\n", op.String(), flag); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}
