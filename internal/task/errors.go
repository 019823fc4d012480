package task

import "fmt"

// InvalidCommandError is returned when a configured command cannot be turned into a task.
type InvalidCommandError struct {
	Pattern string
	Command string
	Reason  string
}

func (e *InvalidCommandError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("invalid command for %q: %s", e.Pattern, e.Reason)
	}
	return fmt.Sprintf("invalid command %q for %q: %s", e.Command, e.Pattern, e.Reason)
}

func (e *InvalidCommandError) InvalidInput() bool {
	return true
}

// InvalidPatternError is returned when a glob pattern cannot be parsed.
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q", e.Pattern)
}

func (e *InvalidPatternError) InvalidInput() bool {
	return true
}
