// Package template provides the text/template rendering engine and the
// function map available to blueprint files.
package template

import (
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FuncMap returns the functions blueprint files and template overlays may
// call. Names follow the Rails inflector where one exists.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"camelize":   Camelize,
		"underscore": underscore,
		"dasherize":  dasherize,
		"humanize":   Humanize,
		"titleize":   Titleize,
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"replace":    replace,
		"indent":     indent,
		"join":       join,
		"check":      check,
		"default":    defaultVal,
	}
}

// title capitalizes s. Casers are stateful, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Camelize returns the Ruby constant form of an app name: "my_blog" and
// "my-blog" become "MyBlog", as rails new names the application module.
func Camelize(s string) string {
	var b strings.Builder

	for _, w := range words(s) {
		b.WriteString(title(w))
	}

	return b.String()
}

// Humanize turns an identifier into a sentence-cased phrase: "my_app" becomes
// "My app".
func Humanize(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}

	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}

	ws[0] = title(ws[0])

	return strings.Join(ws, " ")
}

// Titleize capitalizes every word: "my_app" becomes "My App".
func Titleize(s string) string {
	return title(strings.Join(words(s), " "))
}

func underscore(s string) string {
	return strings.ToLower(strings.Join(words(s), "_"))
}

func dasherize(s string) string {
	return strings.ToLower(strings.Join(words(s), "-"))
}

// replace takes s last so it can be piped: {{ .app_name | replace "-" "_" }}.
func replace(old, repl, s string) string {
	return strings.ReplaceAll(s, old, repl)
}

// indent prefixes every non-empty line of s with n spaces.
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")

	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}

	return strings.Join(lines, "\n")
}

func join(sep string, items []string) string {
	return strings.Join(items, sep)
}

// check renders a boolean as the summary marker.
func check(v bool) string {
	if v {
		return "✅"
	}

	return "❌"
}

func defaultVal(def, val string) string {
	if val != "" {
		return val
	}

	return def
}

// words splits on separators and lower-to-upper transitions, so "myBlog",
// "my_blog", and "my-blog" all yield [my blog].
func words(s string) []string {
	return strings.FieldsFunc(splitCamel(s), func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
}

func splitCamel(s string) string {
	var b strings.Builder

	prev := rune(0)

	for _, r := range s {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteRune(' ')
		}

		b.WriteRune(r)
		prev = r
	}

	return b.String()
}
