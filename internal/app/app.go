// Package app wires configuration, git, the task pipeline and the report into one run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/lintit/internal/config"
	"github.com/Cyclone1070/lintit/internal/guard"
	"github.com/Cyclone1070/lintit/internal/logging"
	"github.com/Cyclone1070/lintit/internal/mode"
	"github.com/Cyclone1070/lintit/internal/runner"
	"github.com/Cyclone1070/lintit/internal/selection"
	"github.com/Cyclone1070/lintit/internal/service/executor"
	"github.com/Cyclone1070/lintit/internal/service/git"
	"github.com/Cyclone1070/lintit/internal/task"
	"github.com/Cyclone1070/lintit/internal/ui"
)

// gitOutputLimit caps git query output independently of the task output limit.
const gitOutputLimit = 512 * 1024 * 1024

// Overrides are option values given on the command line. Nil fields keep the
// value from the config file.
type Overrides struct {
	Concurrent *config.Concurrency
	Relative   *bool
	Shell      *bool
	FailFast   *bool
}

func (o Overrides) apply(opts *config.Options) {
	if o.Concurrent != nil {
		opts.Concurrent = *o.Concurrent
	}
	if o.Relative != nil {
		opts.Relative = *o.Relative
	}
	if o.Shell != nil {
		opts.Shell = *o.Shell
	}
	if o.FailFast != nil {
		opts.FailFast = *o.FailFast
	}
}

// Options describe one invocation.
type Options struct {
	Mode       mode.Mode
	ConfigPath string
	// Dir is where the run starts; the working directory when empty.
	Dir       string
	Overrides Overrides
	Debug     bool
	Quiet     bool

	// Patterns replace the configured linters when set, which allows function commands.
	Patterns []task.Pattern
	// Config is used instead of loading a file when set.
	Config *config.Config

	Stdout io.Writer
	Stderr io.Writer
}

// Run executes one invocation and prints its report. It returns whether every
// task passed and unstaged changes were restored; a non-nil error means the run
// could not start or could not set unstaged changes aside.
func Run(ctx context.Context, opts Options) (bool, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	logger := logging.New(opts.Stderr, logging.Options{Debug: opts.Debug, Quiet: opts.Quiet})

	if !opts.Mode.Valid() {
		return false, &mode.InvalidModeError{Value: string(opts.Mode)}
	}

	cwd := opts.Dir
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return false, fmt.Errorf("failed to get working directory: %w", err)
		}
		cwd = wd
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", cwd, err)
	}

	root, err := git.ResolveRoot(cwd)
	if err != nil {
		return false, err
	}
	logger.Debug("resolved working tree", "root", root, "cwd", cwd)

	cfg, err := loadConfig(opts, cwd, root, logger)
	if err != nil {
		return false, err
	}

	patterns, err := buildPatterns(opts.Patterns, cfg.Linters)
	if err != nil {
		return false, err
	}

	taskExec := executor.NewOSCommandExecutor(cfg)
	gitCfg := *cfg
	gitCfg.Options.MaxOutputSize = gitOutputLimit
	gitCfg.Options.CommandTimeoutSeconds = 0
	gitClient := git.NewClient(executor.NewOSCommandExecutor(&gitCfg), root)

	files, err := selection.Select(ctx, opts.Mode, gitClient)
	if err != nil {
		return false, err
	}
	logger.Debug("selected files", "mode", opts.Mode, "count", len(files))

	groups := task.GenerateGroups(patterns, files, root, cwd, cfg.Options.Relative)

	builder := task.NewBuilder(opts.Mode, cwd, cfg.Options.Shell, logger)
	wt := guard.New(gitClient, opts.Mode.Snapshots(), logger)
	r := runner.New(taskExec, builder, wt, runner.Options{
		Concurrency: cfg.Options.Concurrent,
		FailFast:    cfg.Options.FailFast,
	}, logger)

	result, err := r.Run(ctx, groups)
	if err != nil {
		return false, err
	}
	logger.Debug("run finished", "summary", runner.Summary(result), "passed", result.Passed)

	ui.NewPrinter(opts.Stdout, opts.Quiet).WriteReport(result, opts.Mode)
	return result.Passed, nil
}

func loadConfig(opts Options, cwd, root string, logger *slog.Logger) (*config.Config, error) {
	cfg := opts.Config
	path := "<provided>"
	if cfg == nil {
		if len(opts.Patterns) > 0 && opts.ConfigPath == "" {
			cfg = config.DefaultConfig()
		} else {
			loaded, found, err := config.NewLoader().Load(opts.ConfigPath, cwd, root)
			if err != nil {
				return nil, err
			}
			cfg, path = loaded, found
		}
	}

	merged := *cfg
	opts.Overrides.apply(&merged.Options)
	if err := merged.Options.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("loaded configuration", "path", path, "patterns", len(merged.Linters), "options", fmt.Sprintf("%+v", merged.Options))
	return &merged, nil
}

func buildPatterns(explicit []task.Pattern, linters []config.Linter) ([]task.Pattern, error) {
	patterns := explicit
	if len(patterns) == 0 {
		patterns = make([]task.Pattern, 0, len(linters))
		for _, l := range linters {
			patterns = append(patterns, task.Pattern{Glob: l.Pattern, Commands: task.Literals(l.Commands)})
		}
	}
	if len(patterns) == 0 {
		return nil, &config.InvalidError{Problems: []string{"at least one glob pattern must be configured"}}
	}
	for _, p := range patterns {
		if err := task.ValidatePattern(p.Glob); err != nil {
			return nil, err
		}
	}
	return patterns, nil
}
