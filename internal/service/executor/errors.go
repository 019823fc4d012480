package executor

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a command runs longer than command_timeout_seconds.
var ErrTimeout = errors.New("command timed out")

// CommandError is returned when a command could not be run at all.
type CommandError struct {
	Cmd   string
	Cause error
	Stage string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Stage, e.Cmd, e.Cause)
}

func (e *CommandError) Unwrap() error { return e.Cause }
