// Package ui provides consistent styled output for the railsforge CLI.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Markdown styles accepted by RenderMarkdown.
const (
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

const wrapWidth = 100

// Writer provides styled output methods that respect color settings.
type Writer struct {
	out     io.Writer
	errOut  io.Writer
	noColor bool
	// tty is true when out is a terminal; Markdown is only styled then.
	tty bool

	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	bold    lipgloss.Style
}

// NewWriter creates a Writer that writes to stdout/stderr.
// Color is disabled when noColor is true, the NO_COLOR env var is set, or
// stdout is not a terminal.
func NewWriter(noColor bool) *Writer {
	tty := IsTerminal(os.Stdout)

	return newWriter(os.Stdout, os.Stderr, noColor || os.Getenv("NO_COLOR") != "" || !tty, tty)
}

// NewWriterWithOutputs creates a Writer with custom output destinations.
// Intended for testing; colors are forced on unless noColor is set.
func NewWriterWithOutputs(out, errOut io.Writer, noColor bool) *Writer {
	return newWriter(out, errOut, noColor, false)
}

func newWriter(out, errOut io.Writer, noColor, tty bool) *Writer {
	r := lipgloss.NewRenderer(out)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.ANSI)
	}

	return &Writer{
		out:     out,
		errOut:  errOut,
		noColor: noColor,
		tty:     tty,
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		info:    r.NewStyle().Foreground(lipgloss.Color("6")),
		bold:    r.NewStyle().Bold(true),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Success prints a success message with a green checkmark prefix.
func (w *Writer) Success(msg string) {
	writeLine(w.out, w.success.Render("✓"), msg)
}

// Warning prints a warning message to stderr with a yellow prefix.
func (w *Writer) Warning(msg string) {
	writeLine(w.errOut, w.warning.Render("warning:"), msg)
}

// Error prints an error message to stderr with a red prefix.
func (w *Writer) Error(msg string) {
	writeLine(w.errOut, w.failure.Render("error:"), msg)
}

// Info prints an informational message with a cyan prefix.
func (w *Writer) Info(msg string) {
	writeLine(w.out, w.info.Render("info:"), msg)
}

// Bold returns text in bold.
func (w *Writer) Bold(msg string) string {
	return w.bold.Render(msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Infof prints a formatted informational message.
func (w *Writer) Infof(format string, args ...any) {
	w.Info(fmt.Sprintf(format, args...))
}

// Markdown prints a Markdown document. On a color terminal it is rendered with
// glamour; otherwise it is printed verbatim so it stays greppable.
func (w *Writer) Markdown(md string) error {
	if !w.tty || w.noColor {
		_, err := io.WriteString(w.out, md)
		return err
	}

	style := StyleDark
	if !lipgloss.HasDarkBackground() {
		style = StyleLight
	}

	rendered, err := RenderMarkdown(md, style)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w.out, rendered)

	return err
}

// RenderMarkdown renders md with the named glamour style.
func RenderMarkdown(md, style string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return out, nil
}

func writeLine(out io.Writer, prefix, msg string) {
	if _, err := fmt.Fprintf(out, "%s %s\n", prefix, msg); err != nil {
		// Best-effort output; if stderr fails there's nothing useful to do.
		return
	}
}
