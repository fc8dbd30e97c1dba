// Package console prints batch progress: banners, per-file status lines and
// the final tally.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const bannerWidth = 70

var (
	colorSuccess = lipgloss.Color("#00FF00")
	colorFailure = lipgloss.Color("#FF0000")
	colorWarning = lipgloss.Color("#FFFF00")
	colorMuted   = lipgloss.Color("#888888")

	styleBanner  = lipgloss.NewStyle().Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleFailure = lipgloss.NewStyle().Foreground(colorFailure).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Printer writes styled status output. Styling is applied only when the
// writer is a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a printer, enabling color when w is a terminal.
func New(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w)}
}

// NewPlain creates a printer that never styles output.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Banner prints a title between two rules.
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", bannerWidth)
	p.println(rule)
	p.println(p.style(styleBanner, title))
	p.println(rule)
}

// Rule prints a bare rule.
func (p *Printer) Rule() {
	p.println(strings.Repeat("=", bannerWidth))
}

// Success prints a line with a check mark.
func (p *Printer) Success(format string, args ...interface{}) {
	p.println(p.style(styleSuccess, "✓ "+fmt.Sprintf(format, args...)))
}

// Failure prints a line with a cross mark.
func (p *Printer) Failure(format string, args ...interface{}) {
	p.println(p.style(styleFailure, "✗ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...interface{}) {
	p.println(p.style(styleWarning, "⚠️ "+fmt.Sprintf(format, args...)))
}

// Info prints an unstyled line.
func (p *Printer) Info(format string, args ...interface{}) {
	p.println(fmt.Sprintf(format, args...))
}

// Detail prints a muted, indented line.
func (p *Printer) Detail(format string, args ...interface{}) {
	p.println(p.style(styleMuted, "  "+fmt.Sprintf(format, args...)))
}

// Tally prints the final per-batch counts.
func (p *Printer) Tally(succeeded, failed, skipped int) {
	p.println("")
	p.Banner("Processing summary:")
	p.Success("Processed successfully: %d", succeeded)
	if failed > 0 {
		p.Failure("Failed: %d", failed)
	}
	if skipped > 0 {
		p.Warning("Skipped: %d", skipped)
	}
	p.Rule()
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}
