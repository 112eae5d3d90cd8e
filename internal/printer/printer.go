// Package printer writes colored status lines for CLI subcommands.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Printer writes to an output and an error stream.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// Default writes to stdout and stderr.
var Default = &Printer{Out: os.Stdout, Err: os.Stderr}

// Success prints a green line prefixed with a check mark.
func (p *Printer) Success(format string, a ...any) {
	green.Fprintf(p.Out, "✓ %s\n", strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// Info prints a plain line.
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.Out, "%s\n", strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// Step prints a cyan progress line.
func (p *Printer) Step(format string, a ...any) {
	cyan.Fprintf(p.Out, "→ %s\n", strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// Warning prints a yellow line to the error stream.
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.Err, "! %s\n", strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// Error prints a titled error with optional hints and returns a plain error
// carrying the title, for cobra to propagate silently.
func (p *Printer) Error(title, explanation string, hints ...string) error {
	red.Fprintf(p.Err, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(p.Err, "%s\n", explanation)
	}
	for _, h := range hints {
		fmt.Fprintf(p.Err, "  - %s\n", h)
	}
	return fmt.Errorf("%s", title)
}

// Success prints through Default.
func Success(format string, a ...any) { Default.Success(format, a...) }

// Info prints through Default.
func Info(format string, a ...any) { Default.Info(format, a...) }

// Step prints through Default.
func Step(format string, a ...any) { Default.Step(format, a...) }

// Warning prints through Default.
func Warning(format string, a ...any) { Default.Warning(format, a...) }

// Error prints through Default.
func Error(title, explanation string, hints ...string) error {
	return Default.Error(title, explanation, hints...)
}
