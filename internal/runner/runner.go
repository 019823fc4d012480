// Package runner executes pattern groups inside the working-tree guard and
// collects what every subtask did.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Cyclone1070/lintit/internal/config"
	"github.com/Cyclone1070/lintit/internal/guard"
	"github.com/Cyclone1070/lintit/internal/service/executor"
	"github.com/Cyclone1070/lintit/internal/task"
	"golang.org/x/sync/errgroup"
)

// commandExecutor runs a single subtask.
type commandExecutor interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error)
	RunShell(ctx context.Context, script string, dir string, env []string) (*executor.Result, error)
}

// taskBuilder turns a group into its subtasks.
type taskBuilder interface {
	Build(group task.Group) ([]task.Task, error)
}

// workingTreeGuard sets unstaged changes aside around the run.
type workingTreeGuard interface {
	Begin() error
	Save(ctx context.Context) error
	Update(ctx context.Context) error
	Restore(ctx context.Context) error
	Snapshot() (guard.Snapshot, bool)
}

// Options control how groups are scheduled.
type Options struct {
	Concurrency config.Concurrency
	// FailFast skips groups that have not started once any subtask failed.
	FailFast bool
}

func (o Options) limit() int {
	if o.Concurrency.Sequential() {
		return 1
	}
	// errgroup treats a negative limit as unbounded.
	return int(o.Concurrency)
}

// Runner executes the groups of one invocation.
type Runner struct {
	exec    commandExecutor
	builder taskBuilder
	guard   workingTreeGuard
	opts    Options
	logger  *slog.Logger

	// indexMu serialises subtasks that write the index; git holds index.lock while they run.
	indexMu sync.Mutex
}

// New creates a Runner.
func New(exec commandExecutor, builder taskBuilder, g workingTreeGuard, opts Options, logger *slog.Logger) *Runner {
	if exec == nil {
		panic("exec is required")
	}
	if builder == nil {
		panic("builder is required")
	}
	if g == nil {
		panic("guard is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Runner{exec: exec, builder: builder, guard: g, opts: opts, logger: logger}
}

type plan struct {
	group task.Group
	tasks []task.Task
}

// Run executes groups and reports the outcome. Task failures are recorded in
// the result; an error is returned only when the run could not start.
//
// Groups run concurrently up to the configured limit while subtasks inside a
// group run in order and stop at the first failure. Unstaged changes are set
// aside before the first group starts and restored after the last one ends.
func (r *Runner) Run(ctx context.Context, groups []task.Group) (*Result, error) {
	result := &Result{Groups: make([]GroupResult, len(groups))}
	for i, g := range groups {
		result.Groups[i] = GroupResult{Pattern: g.Pattern, Files: len(g.Files), Status: StatusSkipped}
	}

	plans := make([]*plan, len(groups))
	empty := true
	for i, g := range groups {
		if g.Skippable() {
			continue
		}
		empty = false
		tasks, err := r.builder.Build(g)
		if err != nil {
			return nil, err
		}
		plans[i] = &plan{group: g, tasks: tasks}
	}
	if empty {
		result.Passed = true
		result.NothingToDo = true
		return result, nil
	}

	run := &Context{}
	if err := r.guard.Begin(); err != nil {
		return nil, err
	}
	if err := r.guard.Save(ctx); err != nil {
		return nil, err
	}
	_, engaged := r.guard.Snapshot()
	run.setSnapshot(engaged)

	eg := new(errgroup.Group)
	eg.SetLimit(r.opts.limit())
	for i, p := range plans {
		if p == nil {
			continue
		}
		i, p := i, p
		eg.Go(func() error {
			if r.opts.FailFast && run.HasErrors() {
				r.logger.Debug("skipping group after earlier failure", "pattern", p.group.Pattern)
				return nil
			}
			result.Groups[i] = r.runGroup(ctx, p)
			if result.Groups[i].Status == StatusFailed {
				run.markFailed()
			}
			return nil
		})
	}
	_ = eg.Wait()

	failed := run.HasErrors()
	result.Guard = r.finish(ctx, run, failed)
	result.Passed = !failed && result.Guard.Err == nil
	return result, nil
}

// finish records the task output and brings unstaged changes back.
func (r *Runner) finish(ctx context.Context, run *Context, failed bool) GuardOutcome {
	outcome := GuardOutcome{Engaged: run.HasSnapshot()}
	ctx = context.WithoutCancel(ctx)

	var updateErr error
	if !failed {
		if updateErr = r.guard.Update(ctx); updateErr != nil {
			r.logger.Warn("failed to record task output", "error", updateErr)
		}
	}
	restoreErr := r.guard.Restore(ctx)

	outcome.Restored = outcome.Engaged && restoreErr == nil
	outcome.Err = errors.Join(updateErr, restoreErr)
	return outcome
}

func (r *Runner) runGroup(ctx context.Context, p *plan) GroupResult {
	res := GroupResult{
		Pattern:  p.group.Pattern,
		Files:    len(p.group.Files),
		Status:   StatusPassed,
		Subtasks: make([]SubtaskResult, 0, len(p.tasks)),
	}
	for _, t := range p.tasks {
		if res.Status == StatusFailed {
			res.Subtasks = append(res.Subtasks, SubtaskResult{Title: t.Title, Status: StatusSkipped})
			continue
		}
		sub := r.runTask(ctx, t)
		if sub.Status == StatusFailed {
			res.Status = StatusFailed
		}
		res.Subtasks = append(res.Subtasks, sub)
	}
	return res
}

func (r *Runner) runTask(ctx context.Context, t task.Task) SubtaskResult {
	r.logger.Debug("running task", "title", t.Title, "dir", t.Invocation.Dir)
	if t.Restage {
		r.indexMu.Lock()
		defer r.indexMu.Unlock()
	}

	var (
		out *executor.Result
		err error
	)
	if t.Invocation.Shell() {
		out, err = r.exec.RunShell(ctx, t.Invocation.Script, t.Invocation.Dir, nil)
	} else {
		out, err = r.exec.Run(ctx, t.Invocation.Argv, t.Invocation.Dir, nil)
	}
	if err == nil && out != nil && out.ExitCode == 0 {
		return SubtaskResult{Title: t.Title, Status: StatusPassed}
	}

	sub := SubtaskResult{Title: t.Title, Status: StatusFailed, ExitCode: -1}
	if out != nil {
		sub.ExitCode = out.ExitCode
		sub.Output = out.Output()
		if out.Truncated {
			sub.Output += "\n[output truncated]"
		}
	}
	if sub.Output == "" && err != nil {
		sub.Output = err.Error()
	}
	r.logger.Debug("task failed", "title", t.Title, "exit_code", sub.ExitCode, "error", err)
	return sub
}

// Summary returns a one-line description of result for logs.
func Summary(result *Result) string {
	if result.NothingToDo {
		return "nothing to do"
	}
	return fmt.Sprintf("%d groups, %d failed", len(result.Groups), len(result.Failed()))
}
