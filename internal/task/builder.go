package task

import (
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"strings"

	"github.com/Cyclone1070/lintit/internal/mode"
	"github.com/mattn/go-shellwords"
)

const (
	fileMarker     = "[file]"
	functionMarker = "[Function]"
)

var repeatedFileMarkers = regexp.MustCompile(`\[file\].*\[file\]`)

// Invocation is a resolved command ready for the executor.
// Exactly one of Argv or Script is set; Script runs through the shell.
type Invocation struct {
	Argv   []string
	Script string
	Dir    string
}

// Shell reports whether the invocation must go through the platform shell.
func (i Invocation) Shell() bool {
	return i.Script != ""
}

// Task is one subtask of a pattern group.
type Task struct {
	Title      string
	Invocation Invocation
	// Restage marks the step that adds fixed files back to the index.
	Restage bool
}

// Builder turns groups into subtasks for one mode.
type Builder struct {
	mode   mode.Mode
	dir    string
	shell  bool
	logger *slog.Logger
	goos   string
}

// NewBuilder creates a Builder whose tasks run in dir.
// With shell set, commands are handed to the shell instead of being tokenised.
func NewBuilder(m mode.Mode, dir string, shell bool, logger *slog.Logger) *Builder {
	if logger == nil {
		panic("logger is required")
	}
	return &Builder{mode: m, dir: dir, shell: shell, logger: logger, goos: runtime.GOOS}
}

// Build returns the subtasks of group in execution order: every configured command
// and, when the mode writes fixes back, a final step adding the files back to the index.
func (b *Builder) Build(group Group) ([]Task, error) {
	if length, exceeded := ExceedsArgLength(group.Files, b.goos); exceeded {
		b.logger.Warn("generated argument string may be too long for this platform; consider a function command that splits files into batches",
			"pattern", group.Pattern,
			"length", length,
			"limit", MaxArgLength(b.goos),
		)
	}

	writesBack := b.mode.WritesBack()
	var tasks []Task
	for _, spec := range group.Commands {
		var (
			built []Task
			err   error
		)
		switch spec.Kind() {
		case KindLiteral:
			built, err = b.buildLiteral(group, spec.literal, writesBack)
		case KindDynamic:
			built, err = b.buildDynamic(group, spec.fn, writesBack)
		default:
			err = &InvalidCommandError{Pattern: group.Pattern, Reason: "unknown command kind"}
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, built...)
	}

	if writesBack {
		tasks = append(tasks, Task{
			Title: "git add",
			Invocation: Invocation{
				Argv: append([]string{"git", "add", "--"}, group.Files...),
				Dir:  b.dir,
			},
			Restage: true,
		})
	}
	return tasks, nil
}

func (b *Builder) buildLiteral(group Group, command string, writesBack bool) ([]Task, error) {
	resolved := Normalize(command).Select(writesBack)
	if b.shell {
		script := strings.Join(append([]string{resolved}, group.Files...), " ")
		return []Task{{Title: resolved, Invocation: Invocation{Script: script, Dir: b.dir}}}, nil
	}

	argv, err := b.tokenize(group.Pattern, resolved)
	if err != nil {
		return nil, err
	}
	return []Task{{
		Title:      resolved,
		Invocation: Invocation{Argv: append(argv, group.Files...), Dir: b.dir},
	}}, nil
}

// buildDynamic titles the tasks from a call with placeholder files before resolving
// the real command lines, so titles stay short however many files matched.
func (b *Builder) buildDynamic(group Group, fn CommandFunc, writesBack bool) ([]Task, error) {
	if fn == nil {
		return nil, &InvalidCommandError{Pattern: group.Pattern, Reason: "command function is nil"}
	}

	placeholders := make([]string, len(group.Files))
	for i := range placeholders {
		placeholders[i] = fileMarker
	}
	titles := fn(placeholders)

	commands := fn(group.Files)
	if len(commands) == 0 {
		return nil, &InvalidCommandError{Pattern: group.Pattern, Command: functionMarker, Reason: "function returned no commands"}
	}

	tasks := make([]Task, 0, len(commands))
	for i, command := range commands {
		if strings.TrimSpace(command) == "" {
			return nil, &InvalidCommandError{Pattern: group.Pattern, Command: functionMarker, Reason: fmt.Sprintf("function returned an empty command at index %d", i)}
		}
		resolved := Normalize(command).Select(writesBack)

		title := functionMarker
		if i < len(titles) && strings.TrimSpace(titles[i]) != "" {
			title = repeatedFileMarkers.ReplaceAllString(Normalize(titles[i]).Select(writesBack), fileMarker)
		}

		if b.shell {
			tasks = append(tasks, Task{Title: title, Invocation: Invocation{Script: resolved, Dir: b.dir}})
			continue
		}
		argv, err := b.tokenize(group.Pattern, resolved)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, Task{Title: title, Invocation: Invocation{Argv: argv, Dir: b.dir}})
	}
	return tasks, nil
}

func (b *Builder) tokenize(pattern, command string) ([]string, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, &InvalidCommandError{Pattern: pattern, Command: command, Reason: err.Error()}
	}
	if len(argv) == 0 {
		return nil, &InvalidCommandError{Pattern: pattern, Command: command, Reason: "command is empty"}
	}
	return argv, nil
}
