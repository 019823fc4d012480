// Package mode defines how lintit selects files and whether it writes fixes back.
package mode

import (
	"fmt"
	"strings"
)

// Mode selects which files a run operates on.
type Mode string

const (
	// All runs on every tracked file.
	All Mode = "all"
	// Modified runs on files added, copied, modified or renamed since HEAD.
	Modified Mode = "modified"
	// Staged runs on files in the index, applies fixes and re-stages them.
	Staged Mode = "staged"
	// CI runs on every tracked file of a clean checkout.
	CI Mode = "ci"
)

// Modes lists the valid modes in display order.
var Modes = []Mode{All, Modified, Staged, CI}

// InvalidModeError is returned when a mode name is not recognised.
type InvalidModeError struct {
	Value string
}

func (e *InvalidModeError) Error() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return fmt.Sprintf("invalid mode %q (expected one of %s)", e.Value, strings.Join(names, ", "))
}

func (e *InvalidModeError) InvalidInput() bool {
	return true
}

// Parse converts a mode name into a Mode.
func Parse(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &InvalidModeError{Value: s}
	}
	return m, nil
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case All, Modified, Staged, CI:
		return true
	}
	return false
}

// WritesBack reports whether commands run in their fix form and the
// matched files are added back to the index afterwards.
func (m Mode) WritesBack() bool {
	return m == Staged
}

// Snapshots reports whether unstaged changes must be set aside while tasks run.
func (m Mode) Snapshots() bool {
	return m == Staged
}

func (m Mode) String() string {
	return string(m)
}
