// Package output renders console messages with lipgloss styles.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/deppfellow/projects/internal/errs"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Printer writes styled lines to w.
//
// Verbose printers include the low-level cause when printing errors.
type Printer struct {
	w       io.Writer
	verbose bool
}

func New(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

// Writer exposes the destination, for prompts that must not end in a newline.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprint(p.w, successStyle.Render("✓ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprint(p.w, warningStyle.Render("⚠ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Info prints an info message
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprint(p.w, infoStyle.Render("ℹ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Muted prints a muted message
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Line prints an unstyled line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Section prints a section header with an underline of the same width.
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, primaryStyle.Render(title))
	fmt.Fprintln(p.w, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Error prints err for a human.
//
// Application errors show their message and field errors; the cause is only
// shown in verbose mode. Anything else prints err.Error().
func (p *Printer) Error(err error) {
	fmt.Fprint(p.w, errorStyle.Render("✗ "))
	fmt.Fprintln(p.w, Describe(err, p.verbose))
}

// JSON pretty-prints v as indented JSON.
func (p *Printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}

	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// Describe renders err as the console shows it.
//
//	Validation failed: projectname is required; difficulty must not exceed 5
func Describe(err error, verbose bool) string {
	var appErr *errs.AppError
	if !errors.As(err, &appErr) || verbose {
		return err.Error()
	}

	if len(appErr.Errors) == 0 {
		return appErr.Message
	}

	parts := make([]string, 0, len(appErr.Errors))
	for _, fe := range appErr.Errors {
		parts = append(parts, fe.Field+" "+fe.Error)
	}
	return appErr.Message + ": " + strings.Join(parts, "; ")
}
