package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotGitRepository indicates the working directory is not inside a git working tree.
var ErrNotGitRepository = errors.New("current directory is not a git directory")

// ErrTruncatedOutput is returned when git printed more than the executor keeps.
var ErrTruncatedOutput = errors.New("output exceeded the size limit")

// CommandError is returned when a git invocation fails.
// It keeps the arguments and stderr so the failing step can be reported.
type CommandError struct {
	Args     []string
	Stderr   string
	ExitCode int
	Cause    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed", strings.Join(e.Args, " "))
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, stderr)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Cause }
