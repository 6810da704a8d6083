package transform

import (
	"fmt"
	"regexp"
	"strings"
)

// Placement is where an insertion goes relative to its anchor.
type Placement string

// Placements.
const (
	After  Placement = "after"
	Before Placement = "before"
)

// Occurrence selects which match of an anchor is used.
type Occurrence string

// Occurrences.
const (
	First Occurrence = "first"
	Last  Occurrence = "last"
)

// Insert describes an anchored insertion.
type Insert struct {
	Anchor     string
	Text       string
	Placement  Placement
	Occurrence Occurrence
	Required   bool
}

// InsertText places ins.Text before or after ins.Anchor. If the text is
// already present the input is returned unchanged, which keeps repeated runs
// from stacking insertions. A missing anchor is an error only when required.
func InsertText(text string, ins Insert) (string, error) {
	if ins.Text != "" && strings.Contains(text, ins.Text) {
		return text, nil
	}

	idx := strings.Index(text, ins.Anchor)
	if ins.Occurrence == Last {
		idx = strings.LastIndex(text, ins.Anchor)
	}

	if ins.Anchor == "" || idx < 0 {
		if ins.Required {
			return text, notFound(ins.Anchor)
		}

		return text, nil
	}

	at := idx
	if ins.Placement != Before {
		at = idx + len(ins.Anchor)
	}

	return text[:at] + ins.Text + text[at:], nil
}

// InsertAfterAnchor inserts after the first occurrence of anchor.
func InsertAfterAnchor(text, anchor, insertion string, required bool) (string, error) {
	return InsertText(text, Insert{Anchor: anchor, Text: insertion, Placement: After, Required: required})
}

// Pattern is a literal string or, when Regexp is set, a regular expression.
type Pattern struct {
	Expr   string
	Regexp bool
}

// Literal returns a literal Pattern.
func Literal(s string) Pattern {
	return Pattern{Expr: s}
}

// Regex returns a regular-expression Pattern.
func Regex(expr string) Pattern {
	return Pattern{Expr: expr, Regexp: true}
}

func (p Pattern) compile() (*regexp.Regexp, error) {
	expr := p.Expr
	if !p.Regexp {
		expr = regexp.QuoteMeta(expr)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", p.Expr, err)
	}

	return re, nil
}

// ReplacePattern replaces every match of pattern. Regexp replacements may use
// $1-style group references; literal replacements are inserted verbatim.
func ReplacePattern(text string, pattern Pattern, replacement string, required bool) (string, error) {
	re, err := pattern.compile()
	if err != nil {
		return text, err
	}

	if !re.MatchString(text) {
		if required {
			return text, notFound(pattern.Expr)
		}

		return text, nil
	}

	if !pattern.Regexp {
		return re.ReplaceAllLiteralString(text, replacement), nil
	}

	return re.ReplaceAllString(text, replacement), nil
}

// UncommentMatching removes the leading "#" (and one following space) from
// every line whose commented content matches pattern, keeping indentation.
// Lines that are already uncommented are left alone.
func UncommentMatching(text, pattern string, required bool) (string, error) {
	re, err := regexp.Compile(`(?m)^([ \t]*)#[ \t]?(.*(?:` + pattern + `).*)$`)
	if err != nil {
		return text, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	if !re.MatchString(text) {
		if required {
			return text, notFound(pattern)
		}

		return text, nil
	}

	return re.ReplaceAllString(text, "${1}${2}"), nil
}

// Append adds suffix to the end of text unless text already contains it.
// A missing trailing newline on text is repaired first.
func Append(text, suffix string) string {
	if suffix == "" || strings.Contains(text, strings.TrimSpace(suffix)) {
		return text
	}

	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	return text + suffix
}
