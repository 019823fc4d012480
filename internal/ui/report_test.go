package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Cyclone1070/lintit/internal/guard"
	"github.com/Cyclone1070/lintit/internal/mode"
	"github.com/Cyclone1070/lintit/internal/runner"
	"github.com/stretchr/testify/assert"
)

func failingResult() *runner.Result {
	return &runner.Result{
		Groups: []runner.GroupResult{
			{Pattern: "*.js", Files: 1, Status: runner.StatusPassed, Subtasks: []runner.SubtaskResult{{Title: "eslint", Status: runner.StatusPassed}}},
			{Pattern: "*.css", Files: 2, Status: runner.StatusFailed, Subtasks: []runner.SubtaskResult{
				{Title: "stylelint", Status: runner.StatusFailed, ExitCode: 2, Output: "b.css\n  1:3 unexpected unit\n"},
				{Title: "git add", Status: runner.StatusSkipped},
			}},
			{Pattern: "*.md", Status: runner.StatusSkipped},
		},
		Guard: runner.GuardOutcome{Engaged: true, Restored: true},
	}
}

func TestWriteReport_Failure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.WriteReport(failingResult(), mode.Staged)

	out := buf.String()
	assert.Contains(t, out, "✔ *.js (1 file)")
	assert.Contains(t, out, "✖ *.css (2 files)")
	assert.Contains(t, out, "↓ *.md (no files)")
	assert.Contains(t, out, "stylelint failed (exit code 2)")
	assert.Contains(t, out, "1:3 unexpected unit")
	assert.NotContains(t, out, "git add failed")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "Restored unstaged changes"), "restore line comes last")
}

func TestWriteReport_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.WriteReport(failingResult(), mode.Staged)

	out := buf.String()
	assert.NotContains(t, out, "*.js")
	assert.NotContains(t, out, "*.md")
	assert.NotContains(t, out, "Restored")
	assert.Contains(t, out, "✖ *.css")
	assert.Contains(t, out, "unexpected unit")
}

func TestWriteReport_NothingToDo(t *testing.T) {
	tests := []struct {
		mode mode.Mode
		want string
	}{
		{mode.Staged, "No staged files match any of provided globs."},
		{mode.Modified, "No files match any of provided globs."},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		NewPrinter(&buf, false).WriteReport(&runner.Result{Passed: true, NothingToDo: true}, tt.mode)
		assert.Equal(t, tt.want+"\n", buf.String())
	}
}

func TestWriteReport_GuardErrorRenderedLast(t *testing.T) {
	var buf bytes.Buffer
	result := failingResult()
	result.Guard = runner.GuardOutcome{
		Engaged: true,
		Err: &guard.ReconcileError{
			Snapshot: guard.Snapshot{PatchPath: "/repo/.git/lintit_unstaged.patch", BackupCommit: "abc123"},
			Cause:    errors.New("patch failed"),
		},
	}

	NewPrinter(&buf, true).WriteReport(result, mode.Staged)

	out := buf.String()
	guardAt := strings.Index(out, "failed to restore unstaged changes")
	assert.Greater(t, guardAt, strings.Index(out, "unexpected unit"))
	assert.Contains(t, out, "git apply --3way /repo/.git/lintit_unstaged.patch")
	assert.Contains(t, out, "abc123")
	assert.NotContains(t, out, "Restored unstaged changes")
}

func TestWriteError_Plain(t *testing.T) {
	var buf bytes.Buffer

	NewPrinter(&buf, false).WriteError(errors.New("config could not be found"))

	assert.Equal(t, "✖ config could not be found\n", buf.String())
}

func TestNewPrinter_PanicsWithoutOutput(t *testing.T) {
	assert.Panics(t, func() { NewPrinter(nil, false) })
}
