package guard

import (
	"fmt"
	"strings"
)

// TransitionError is returned when a transition is requested from a state that does not allow it.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("guard: %s is not allowed in state %s", e.Op, e.State)
}

// Error is returned when setting unstaged changes aside fails. The working tree
// was rolled back to how it was before the attempt.
type Error struct {
	Step  string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to set unstaged changes aside (%s): %v", e.Step, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// ReconcileError is returned when unstaged changes could not be brought back.
// The snapshot is left in place so the changes can be recovered by hand.
type ReconcileError struct {
	Snapshot Snapshot
	Cause    error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("failed to restore unstaged changes: %v", e.Cause)
}

func (e *ReconcileError) Unwrap() error { return e.Cause }

// RecoveryHint tells the user where the set-aside changes still live.
func (e *ReconcileError) RecoveryHint() string {
	var b strings.Builder
	if e.Snapshot.PatchPath != "" {
		fmt.Fprintf(&b, "unstaged changes are saved in %s; apply them with `git apply --3way %s`", e.Snapshot.PatchPath, e.Snapshot.PatchPath)
	}
	if e.Snapshot.BackupCommit != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "a full backup is kept in the stash list as %s (`git stash apply %s`)", e.Snapshot.BackupCommit, e.Snapshot.BackupCommit)
	}
	return b.String()
}
