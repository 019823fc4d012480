// Package ui prints the outcome of a run.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Cyclone1070/lintit/internal/guard"
	"github.com/Cyclone1070/lintit/internal/mode"
	"github.com/Cyclone1070/lintit/internal/runner"
	"github.com/charmbracelet/lipgloss"
)

const (
	iconPassed  = "✔"
	iconFailed  = "✖"
	iconSkipped = "↓"
	iconWarning = "⚠"
)

// Printer writes run reports to an output stream.
type Printer struct {
	out    io.Writer
	quiet  bool
	styles styles
}

// NewPrinter creates a Printer for out. With quiet set only failures are written.
func NewPrinter(out io.Writer, quiet bool) *Printer {
	if out == nil {
		panic("out is required")
	}
	return &Printer{out: out, quiet: quiet, styles: newStyles(lipgloss.NewRenderer(out))}
}

// WriteReport prints one line per group, the output of failed subtasks and
// finally what happened to the unstaged changes.
func (p *Printer) WriteReport(result *runner.Result, m mode.Mode) {
	if result.NothingToDo {
		if !p.quiet {
			p.println(p.styles.skipped.Render(nothingToDo(m)))
		}
		return
	}

	for _, g := range result.Groups {
		switch g.Status {
		case runner.StatusPassed:
			if !p.quiet {
				p.println(p.styles.passed.Render(fmt.Sprintf("%s %s (%s)", iconPassed, g.Pattern, files(g.Files))))
			}
		case runner.StatusSkipped:
			if !p.quiet {
				p.println(p.styles.skipped.Render(fmt.Sprintf("%s %s (%s)", iconSkipped, g.Pattern, skipReason(g))))
			}
		case runner.StatusFailed:
			p.println(p.styles.failed.Render(fmt.Sprintf("%s %s (%s)", iconFailed, g.Pattern, files(g.Files))))
		}
	}

	for _, g := range result.Failed() {
		for _, sub := range g.Subtasks {
			if sub.Status != runner.StatusFailed {
				continue
			}
			p.println("")
			p.println(p.styles.bold.Render(fmt.Sprintf("%s %s failed (exit code %d):", iconFailed, sub.Title, sub.ExitCode)))
			if out := strings.TrimRight(sub.Output, "\n"); out != "" {
				p.println(p.styles.output.Render(out))
			}
		}
	}

	p.writeGuard(result.Guard)
}

func (p *Printer) writeGuard(outcome runner.GuardOutcome) {
	if outcome.Err != nil {
		p.println("")
		p.WriteError(outcome.Err)
		return
	}
	if outcome.Restored && !p.quiet {
		p.println("")
		p.println(p.styles.passed.Render(iconPassed + " Restored unstaged changes"))
	}
}

// WriteError prints a fatal error, with recovery instructions when unstaged
// changes were left set aside.
func (p *Printer) WriteError(err error) {
	p.println(p.styles.failed.Render(fmt.Sprintf("%s %v", iconFailed, err)))
	var recErr *guard.ReconcileError
	if errors.As(err, &recErr) {
		if hint := recErr.RecoveryHint(); hint != "" {
			p.println(p.styles.warning.Render(fmt.Sprintf("%s %s", iconWarning, hint)))
		}
	}
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.out, s)
}

func nothingToDo(m mode.Mode) string {
	if m == mode.Staged {
		return "No staged files match any of provided globs."
	}
	return "No files match any of provided globs."
}

func skipReason(g runner.GroupResult) string {
	if g.Files == 0 {
		return "no files"
	}
	return "not run"
}

func files(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
