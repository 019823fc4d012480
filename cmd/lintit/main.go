// Package main provides the lintit command: run configured linters and
// formatters on the files selected from a git working tree.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cyclone1070/lintit/internal/app"
	"github.com/Cyclone1070/lintit/internal/config"
	"github.com/Cyclone1070/lintit/internal/mode"
	"github.com/Cyclone1070/lintit/internal/ui"
	"github.com/spf13/cobra"
)

// errTasksFailed makes the command exit non-zero after the report was already printed.
var errTasksFailed = errors.New("tasks failed")

type flags struct {
	mode       string
	concurrent string
	relative   bool
	shell      bool
	quiet      bool
	debug      bool
	configPath string
	failFast   bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "lintit",
		Short: "Run linters and formatters on files selected from git",
		Long: `lintit runs the commands configured for each glob pattern on the files of the
current git working tree that match it.

In staged mode known tools run in fix mode, their fixes are added back to the
index and unstaged edits of partially staged files are kept out of the way
while tasks run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd)
			if err != nil {
				return err
			}
			opts.Stdout = stdout
			opts.Stderr = stderr

			passed, err := app.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !passed {
				return errTasksFailed
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", string(mode.Modified), "file selection: all, modified, staged or ci")
	fl.StringVar(&f.concurrent, "concurrent", "", "run pattern groups concurrently: true, false or a number")
	fl.BoolVar(&f.relative, "relative", false, "pass file paths relative to the current directory")
	fl.BoolVar(&f.shell, "shell", false, "run commands through the system shell")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "only print failures")
	fl.BoolVarP(&f.debug, "debug", "d", false, "log every step")
	fl.StringVarP(&f.configPath, "config", "c", "", "path to the configuration file")
	fl.BoolVar(&f.failFast, "fail-fast", false, "skip remaining groups after the first failure")

	return cmd
}

func (f *flags) options(cmd *cobra.Command) (app.Options, error) {
	m, err := mode.Parse(f.mode)
	if err != nil {
		return app.Options{}, err
	}

	opts := app.Options{
		Mode:       m,
		ConfigPath: f.configPath,
		Debug:      f.debug,
		Quiet:      f.quiet,
	}

	fl := cmd.Flags()
	if fl.Changed("concurrent") {
		c, err := config.ParseConcurrency(f.concurrent)
		if err != nil {
			return app.Options{}, err
		}
		opts.Overrides.Concurrent = &c
	}
	if fl.Changed("relative") {
		opts.Overrides.Relative = &f.relative
	}
	if fl.Changed("shell") {
		opts.Overrides.Shell = &f.shell
	}
	if fl.Changed("fail-fast") {
		opts.Overrides.FailFast = &f.failFast
	}
	return opts, nil
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errTasksFailed):
		return 1
	}
	ui.NewPrinter(stderr, false).WriteError(err)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
