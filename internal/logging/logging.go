// Package logging builds the logger shared by every component of a run.
//
// Components take a *slog.Logger; the handler behind it is a charmbracelet/log
// logger so diagnostics match the styled report written by the ui package.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Prefix tags every diagnostic line.
const Prefix = "lintit"

// Options select how much is logged.
type Options struct {
	// Debug logs every git and task invocation.
	Debug bool
	// Quiet drops everything, warnings included.
	Quiet bool
}

// Level returns the minimum level written for opts. Debug wins over Quiet.
func (o Options) Level() log.Level {
	switch {
	case o.Debug:
		return log.DebugLevel
	case o.Quiet:
		// Nothing is ever logged above error through slog.
		return log.FatalLevel
	}
	return log.WarnLevel
}

// New returns a logger writing to w without timestamps.
func New(w io.Writer, opts Options) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Level:           opts.Level(),
		Prefix:          Prefix,
		ReportTimestamp: false,
	})
	return slog.New(handler)
}
