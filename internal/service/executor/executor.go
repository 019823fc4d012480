// Package executor runs external commands and captures their output.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/Cyclone1070/lintit/internal/config"
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// Output returns stdout followed by stderr, skipping empty streams.
func (r *Result) Output() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// OSCommandExecutor runs real processes with the limits from the run options.
type OSCommandExecutor struct {
	config *config.Config
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{config: cfg}
}

// Run executes command in dir and waits for it. env is appended to the
// environment of the current process.
//
// A command that starts but exits non-zero returns both a Result carrying the exit
// code and the *exec.ExitError. When command_timeout_seconds is configured the
// command is interrupted once it runs longer and ErrTimeout is returned.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string) (*Result, error) {
	var timeout time.Duration
	if seconds := f.config.Options.CommandTimeoutSeconds; seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	return f.RunWithTimeout(ctx, command, dir, env, timeout)
}

// RunShell executes script through the platform shell, so globs, pipes and
// variable expansion work the way they do in a terminal.
func (f *OSCommandExecutor) RunShell(ctx context.Context, script string, dir string, env []string) (*Result, error) {
	return f.Run(ctx, ShellCommand(runtime.GOOS, script), dir, env)
}

// ShellCommand wraps script in the shell invocation used on goos.
func ShellCommand(goos, script string) []string {
	if goos == "windows" {
		return []string{"cmd", "/C", script}
	}
	return []string{"sh", "-c", script}
}

// RunWithTimeout is Run with an explicit timeout; zero means none.
//
// Cancellation and timeouts both interrupt the process first and kill it only
// if it is still running after graceful_shutdown_ms, so tools get a chance to
// clean up temporary files.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	limit := int(f.config.Options.MaxOutputSize)
	stdout := newCappedBuffer(limit)
	stderr := newCappedBuffer(limit)

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Grandchildren holding the pipes open must not block Wait past the grace period.
	cmd.WaitDelay = time.Duration(f.config.Options.GracefulShutdownMs) * time.Millisecond

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		f.stop(cmd, done)
		err = ctx.Err()
	case <-expired:
		f.stop(cmd, done)
		err = ErrTimeout
	}

	return &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode(err),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}, err
}

// stop interrupts cmd and kills it after the grace period. It returns once Wait has.
func (f *OSCommandExecutor) stop(cmd *exec.Cmd, done <-chan error) {
	if runtime.GOOS == "windows" {
		_ = cmd.Process.Kill()
		<-done
		return
	}
	_ = cmd.Process.Signal(os.Interrupt)
	grace := time.Duration(f.config.Options.GracefulShutdownMs) * time.Millisecond
	select {
	case <-done:
	case <-time.After(grace):
		_ = cmd.Process.Kill()
		<-done
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode()
	}
	return -1
}

// cappedBuffer keeps the first max bytes written to it and discards the rest.
// exec.Cmd copies each stream from its own goroutine, so writes are locked.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	max       int
	truncated bool
}

func newCappedBuffer(max int) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.max - len(b.buf)
	switch {
	case room <= 0:
		b.truncated = b.truncated || len(p) > 0
	case len(p) > room:
		b.buf = append(b.buf, p[:room]...)
		b.truncated = true
	default:
		b.buf = append(b.buf, p...)
	}
	// Reporting a short write would make exec fail the command.
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func (b *cappedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
