package runner

// Status is the outcome of a group or subtask.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// Result is the outcome of a run.
type Result struct {
	// Passed is true when every subtask passed and unstaged changes came back.
	Passed bool
	// NothingToDo is true when no pattern matched any selected file.
	NothingToDo bool
	Groups      []GroupResult
	Guard       GuardOutcome
}

// GroupResult is the outcome of one pattern group.
type GroupResult struct {
	Pattern  string
	Files    int
	Status   Status
	Subtasks []SubtaskResult
}

// SubtaskResult is the outcome of one command. Output is only kept for failures.
type SubtaskResult struct {
	Title    string
	Status   Status
	ExitCode int
	Output   string
}

// GuardOutcome describes what happened to the unstaged changes.
type GuardOutcome struct {
	Engaged  bool
	Restored bool
	Err      error
}

// Failed returns the groups that did not pass, in pattern order.
func (r *Result) Failed() []GroupResult {
	var failed []GroupResult
	for _, g := range r.Groups {
		if g.Status == StatusFailed {
			failed = append(failed, g)
		}
	}
	return failed
}
