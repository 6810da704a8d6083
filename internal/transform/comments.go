package transform

import "strings"

// declarationDefault is the Sass marker stripped from commented declarations.
const declarationDefault = " !default"

// CommentOutDeclarations turns a Sass variables file into an overrides file
// where every line is commented out. Blank lines are kept, existing "//"
// comments are kept, variable declarations lose their !default marker, and
// any other line is commented verbatim. Running it on its own output is a no-op.
func CommentOutDeclarations(src string) string {
	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			out = append(out, "")
		case strings.HasPrefix(trimmed, "//"):
			out = append(out, strings.TrimRight(line, " \t\r"))
		case isDeclaration(line):
			clean := strings.ReplaceAll(strings.TrimRight(line, " \t\r"), declarationDefault, "")
			out = append(out, "// "+clean)
		default:
			out = append(out, "// "+strings.TrimRight(line, " \t\r"))
		}
	}

	return strings.Join(out, "\n") + "\n"
}

func isDeclaration(line string) bool {
	return strings.Contains(line, "$") && strings.Contains(line, ":")
}

// StripLineComments removes "#" comments that sit outside single- or
// double-quoted strings, trims trailing whitespace, collapses runs of blank
// lines into one, and drops leading and trailing blank lines.
func StripLineComments(src string) string {
	lines := strings.Split(src, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		kept = append(kept, stripComment(line))
	}

	collapsed := make([]string, 0, len(kept))
	prevBlank := true // suppresses leading blank lines

	for _, line := range kept {
		blank := line == ""
		if blank && prevBlank {
			continue
		}

		collapsed = append(collapsed, line)
		prevBlank = blank
	}

	for len(collapsed) > 0 && collapsed[len(collapsed)-1] == "" {
		collapsed = collapsed[:len(collapsed)-1]
	}

	if len(collapsed) == 0 {
		return ""
	}

	return strings.Join(collapsed, "\n") + "\n"
}

// stripComment cuts a single line at its first unquoted "#". Backslash escapes
// are honored inside quotes only.
func stripComment(line string) string {
	var (
		inSingle bool
		inDouble bool
		escaped  bool
	)

	end := len(line)

scan:
	for i := 0; i < len(line); i++ {
		ch := line[i]

		switch {
		case escaped:
			escaped = false
		case (inSingle || inDouble) && ch == '\\':
			escaped = true
		case !inDouble && ch == '\'':
			inSingle = !inSingle
		case !inSingle && ch == '"':
			inDouble = !inDouble
		case ch == '#' && !inSingle && !inDouble:
			end = i

			break scan
		}
	}

	out := strings.TrimRight(line[:end], " \t\r")
	if strings.TrimSpace(out) == "" {
		return ""
	}

	return out
}
