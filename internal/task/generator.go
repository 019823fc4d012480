// Package task maps configured glob patterns to the selected files they match and
// turns their commands into executable subtasks.
package task

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/lintit/internal/selection"
	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is one configured glob with the commands to run on its matches.
type Pattern struct {
	Glob     string
	Commands []CommandSpec
}

// Group is the set of selected files one pattern matched, with that pattern's commands.
type Group struct {
	Pattern  string
	Files    []string
	Commands []CommandSpec
}

// Skippable reports whether the pattern matched nothing.
func (g Group) Skippable() bool {
	return len(g.Files) == 0
}

// ValidatePattern checks that glob (without a leading "!") is a well-formed pattern.
func ValidatePattern(glob string) error {
	if glob == "" || !doublestar.ValidatePattern(strings.TrimPrefix(glob, "!")) {
		return &InvalidPatternError{Pattern: glob}
	}
	return nil
}

// GenerateGroups returns one group per pattern, in pattern order, holding the
// files of the selection the pattern matches. Files are root-relative on input.
//
// Paths are matched relative to cwd and files outside cwd are ignored unless
// the pattern starts with "../". A pattern without a slash is matched against
// the file's base name. A leading "!" inverts the match.
//
// Output paths are relative to cwd when relative is set and absolute otherwise.
// Groups that match nothing are kept so the run can report them as skipped.
func GenerateGroups(patterns []Pattern, files selection.FileList, root, cwd string, relative bool) []Group {
	type candidate struct {
		abs, rel string
	}
	candidates := make([]candidate, 0, len(files))
	for _, f := range files {
		abs := filepath.Join(root, filepath.FromSlash(f))
		rel, err := filepath.Rel(cwd, abs)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{abs: abs, rel: filepath.ToSlash(rel)})
	}

	groups := make([]Group, 0, len(patterns))
	for _, p := range patterns {
		negated := strings.HasPrefix(p.Glob, "!")
		glob := strings.TrimPrefix(p.Glob, "!")
		parentPattern := strings.HasPrefix(glob, "../")

		matched := make([]string, 0)
		for _, c := range candidates {
			if !parentPattern && isOutside(c.rel) {
				continue
			}
			if matchGlob(glob, c.rel) == negated {
				continue
			}
			if relative {
				matched = append(matched, filepath.FromSlash(c.rel))
			} else {
				matched = append(matched, c.abs)
			}
		}

		groups = append(groups, Group{
			Pattern:  p.Glob,
			Files:    matched,
			Commands: p.Commands,
		})
	}
	return groups
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}

func matchGlob(glob, rel string) bool {
	target := rel
	if !strings.Contains(glob, "/") {
		target = path.Base(rel)
	}
	ok, err := doublestar.Match(glob, target)
	return err == nil && ok
}
