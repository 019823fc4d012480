package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorSuccess = lipgloss.Color("2")
	ColorFailure = lipgloss.Color("1")
	ColorMuted   = lipgloss.Color("241")
	ColorWarning = lipgloss.Color("3")
)

// styles are bound to the renderer of one output so colour is only emitted to terminals.
type styles struct {
	passed  lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	warning lipgloss.Style
	output  lipgloss.Style
	bold    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		passed:  r.NewStyle().Foreground(ColorSuccess),
		failed:  r.NewStyle().Foreground(ColorFailure).Bold(true),
		skipped: r.NewStyle().Foreground(ColorMuted),
		warning: r.NewStyle().Foreground(ColorWarning),
		output:  r.NewStyle().PaddingLeft(4),
		bold:    r.NewStyle().Bold(true),
	}
}
