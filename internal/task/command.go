package task

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Kind tells which variant a CommandSpec holds.
type Kind int

const (
	// KindLiteral is a command line written out in configuration.
	KindLiteral Kind = iota
	// KindDynamic is a function producing command lines from the matched files.
	KindDynamic
)

// CommandFunc builds one or more complete command lines from a file list.
// The lines it returns are run as-is; files are not appended to them.
type CommandFunc func(files []string) []string

// CommandSpec is either a literal command line or a CommandFunc.
type CommandSpec struct {
	kind    Kind
	literal string
	fn      CommandFunc
}

// Literal creates a CommandSpec for a command line. Matched files are appended when it runs.
func Literal(command string) CommandSpec {
	return CommandSpec{kind: KindLiteral, literal: command}
}

// Dynamic creates a CommandSpec whose command lines are generated from the matched files.
func Dynamic(fn CommandFunc) CommandSpec {
	return CommandSpec{kind: KindDynamic, fn: fn}
}

// Literals wraps every configured command line in a Literal spec.
func Literals(commands []string) []CommandSpec {
	specs := make([]CommandSpec, len(commands))
	for i, c := range commands {
		specs[i] = Literal(c)
	}
	return specs
}

// Kind reports which variant c holds.
func (c CommandSpec) Kind() Kind {
	return c.kind
}

// String returns the literal command, or "[Function]" for dynamic specs.
func (c CommandSpec) String() string {
	if c.kind == KindDynamic {
		return "[Function]"
	}
	return c.literal
}

// FixFlags maps known tools to the flag that makes them rewrite files instead of reporting.
var FixFlags = map[string]string{
	"eslint":    "--fix",
	"jsonlint":  "--in-place",
	"prettier":  "--write",
	"stylelint": "--fix",
}

// Forms holds the check and fix variants of one command line.
// They are equal for tools without a known fix flag.
type Forms struct {
	Check string
	Fix   string
}

// Normalize splits command into its check and fix forms. The check form never
// carries the tool's fix flag and the fix form always does. Everything else in
// command, quoting and spacing included, is kept as written.
func Normalize(command string) Forms {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return Forms{Check: command, Fix: command}
	}

	flag, ok := FixFlags[filepath.Base(fields[0])]
	if !ok {
		return Forms{Check: command, Fix: command}
	}

	standalone := regexp.MustCompile(`\s+` + regexp.QuoteMeta(flag) + `(\s|$)`)
	if !standalone.MatchString(command) {
		toolEnd := len(command) - len(strings.TrimLeftFunc(command, unicode.IsSpace)) + len(fields[0])
		return Forms{Check: command, Fix: command[:toolEnd] + " " + flag + command[toolEnd:]}
	}
	return Forms{Check: standalone.ReplaceAllString(command, "${1}"), Fix: command}
}

// Select returns the fix form when fixes are written back, the check form otherwise.
func (f Forms) Select(writesBack bool) string {
	if writesBack {
		return f.Fix
	}
	return f.Check
}
