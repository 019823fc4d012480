// Package selection determines which files a run is allowed to touch.
package selection

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/lintit/internal/mode"
)

// FileList holds root-relative paths in the order git enumerated them, without duplicates.
type FileList []string

// lister is the git query surface the selector needs.
type lister interface {
	ListTracked(ctx context.Context) ([]string, error)
	ListModified(ctx context.Context) ([]string, error)
	ListStaged(ctx context.Context) ([]string, error)
}

// Error is returned when the file selection cannot be determined.
type Error struct {
	Mode  mode.Mode
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("unable to determine file selection for mode %s: %v", e.Mode, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Select returns the files eligible under m.
func Select(ctx context.Context, m mode.Mode, l lister) (FileList, error) {
	var (
		files []string
		err   error
	)
	switch m {
	case mode.Modified:
		files, err = l.ListModified(ctx)
	case mode.Staged:
		files, err = l.ListStaged(ctx)
	case mode.All, mode.CI:
		// A CI checkout is clean, so there is nothing narrower than the tracked set.
		files, err = l.ListTracked(ctx)
	default:
		return nil, &Error{Mode: m, Cause: &mode.InvalidModeError{Value: string(m)}}
	}
	if err != nil {
		return nil, &Error{Mode: m, Cause: err}
	}
	return dedupe(files), nil
}

func dedupe(files []string) FileList {
	seen := make(map[string]bool, len(files))
	list := make(FileList, 0, len(files))
	for _, f := range files {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		list = append(list, f)
	}
	return list
}
