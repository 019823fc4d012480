package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Cyclone1070/lintit/internal/config"
	"github.com/Cyclone1070/lintit/internal/mode"
	"github.com/Cyclone1070/lintit/internal/service/git"
	"github.com/Cyclone1070/lintit/internal/task"
	"github.com/Cyclone1070/lintit/internal/testing/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// partiallyStagedRepo returns a repository where a.txt has a staged and an
// unstaged change, and b.txt is committed and untouched.
func partiallyStagedRepo(t *testing.T) *testhelpers.Repo {
	t.Helper()
	repo := testhelpers.NewRepo(t)
	repo.Commit(map[string]string{"a.txt": "one\n", "b.txt": "b\n"})
	repo.Stage("a.txt", "one\nstaged\n")
	repo.Write("a.txt", "one\nstaged\nunstaged\n")
	return repo
}

func run(t *testing.T, dir string, m mode.Mode, shell bool, commands ...string) (bool, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	passed, err := Run(context.Background(), Options{
		Mode:      m,
		Dir:       dir,
		Overrides: Overrides{Shell: &shell},
		Patterns:  []task.Pattern{{Glob: "*.txt", Commands: task.Literals(commands)}},
		Stdout:    &stdout,
		Stderr:    &stderr,
	})
	return passed, stdout.String(), err
}

func assertUnstagedPreserved(t *testing.T, repo *testhelpers.Repo) {
	t.Helper()
	assert.Equal(t, "one\nstaged\nunstaged\n", repo.Read("a.txt"))
	assert.Equal(t, "one\nstaged\n", repo.Staged("a.txt"))
	assert.Empty(t, repo.Git("stash", "list"), "backup entry is dropped after a clean restore")
	assert.NoFileExists(t, repo.Path(".git/lintit_unstaged.patch"))
}

func TestRun_StagedModePreservesUnstagedChanges(t *testing.T) {
	repo := partiallyStagedRepo(t)

	passed, out, err := run(t, repo.Root, mode.Staged, false, "true")

	require.NoError(t, err)
	assert.True(t, passed)
	assert.Contains(t, out, "*.txt (1 file)")
	assert.Contains(t, out, "Restored unstaged changes")
	assertUnstagedPreserved(t, repo)
}

func TestRun_TasksOnlySeeStagedContent(t *testing.T) {
	repo := partiallyStagedRepo(t)

	passed, _, err := run(t, repo.Root, mode.Staged, true, "! grep -q unstaged")

	require.NoError(t, err)
	assert.True(t, passed, "the unstaged line must be hidden while tasks run")
	assertUnstagedPreserved(t, repo)
}

func TestRun_FailedTasksStillRestore(t *testing.T) {
	repo := partiallyStagedRepo(t)

	passed, out, err := run(t, repo.Root, mode.Staged, true, "echo broken >&2; false")

	require.NoError(t, err)
	assert.False(t, passed)
	assert.Contains(t, out, "✖ *.txt")
	assert.Contains(t, out, "broken")
	assertUnstagedPreserved(t, repo)
}

func TestRun_FixesAreRestaged(t *testing.T) {
	repo := testhelpers.NewRepo(t)
	repo.Commit(map[string]string{"c.txt": "c\n"})
	repo.Stage("c.txt", "c\nmore\n")

	passed, _, err := run(t, repo.Root, mode.Staged, true, `printf 'fixed\n' >`)

	require.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, "fixed\n", repo.Read("c.txt"))
	assert.Equal(t, "fixed\n", repo.Staged("c.txt"), "task output is added back to the index")
}

func TestRun_FailedGroupKeepsFixesOfPassingGroups(t *testing.T) {
	repo := testhelpers.NewRepo(t)
	repo.Commit(map[string]string{"a.js": "old\n", "b.css": "b\n", "d.txt": "a\nb\n"})
	repo.Stage("a.js", "var x\n")
	repo.Stage("b.css", "b {}\n")
	repo.Stage("d.txt", "A\nb\n")
	repo.Write("d.txt", "A\nB\n")
	shell := true

	var stdout bytes.Buffer
	passed, err := Run(context.Background(), Options{
		Mode:      mode.Staged,
		Dir:       repo.Root,
		Overrides: Overrides{Shell: &shell},
		Patterns: []task.Pattern{
			{Glob: "*.js", Commands: task.Literals([]string{`printf 'let x\n' >`})},
			{Glob: "*.css", Commands: task.Literals([]string{"false"})},
		},
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})

	require.NoError(t, err)
	assert.False(t, passed)
	assert.Contains(t, stdout.String(), "Restored unstaged changes")
	assert.Equal(t, "let x\n", repo.Read("a.js"))
	assert.Equal(t, "let x\n", repo.Staged("a.js"), "the passing group's fix stays staged")
	assert.Equal(t, "A\nB\n", repo.Read("d.txt"))
	assert.Equal(t, "A\nb\n", repo.Staged("d.txt"))
	assert.Empty(t, repo.Git("stash", "list"))
}

func TestRun_ConcurrentGroupsRestageWithoutLockErrors(t *testing.T) {
	repo := testhelpers.NewRepo(t)
	files := map[string]string{}
	patterns := make([]task.Pattern, 0, 12)
	for i := 0; i < 12; i++ {
		ext := fmt.Sprintf("e%d", i)
		files["f."+ext] = "v1\n"
		patterns = append(patterns, task.Pattern{Glob: "*." + ext, Commands: task.Literals([]string{"true"})})
	}
	repo.Commit(files)
	for name := range files {
		repo.Stage(name, "v2\n")
	}

	var stdout bytes.Buffer
	passed, err := Run(context.Background(), Options{
		Mode:     mode.Staged,
		Dir:      repo.Root,
		Patterns: patterns,
		Stdout:   &stdout,
		Stderr:   &bytes.Buffer{},
	})

	require.NoError(t, err)
	assert.True(t, passed, stdout.String())
	assert.NotContains(t, stdout.String(), "index.lock")
	for name := range files {
		assert.Equal(t, "v2\n", repo.Staged(name))
	}
}

func TestRun_ModifiedModeNothingToDo(t *testing.T) {
	repo := testhelpers.NewRepo(t)
	repo.Commit(map[string]string{"a.go": "package a\n"})

	passed, out, err := run(t, repo.Root, mode.Modified, false, "false")

	require.NoError(t, err)
	assert.True(t, passed)
	assert.Contains(t, out, "No files match any of provided globs.")
}

func TestRun_LoadsConfigFromRoot(t *testing.T) {
	repo := testhelpers.NewRepo(t)
	repo.Commit(map[string]string{
		"src/a.txt":      "a\n",
		".lintitrc.yaml": "'*.txt': \"false\"\n",
	})

	var stdout bytes.Buffer
	passed, err := Run(context.Background(), Options{
		Mode:   mode.All,
		Dir:    repo.Path("src"),
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})

	require.NoError(t, err)
	assert.False(t, passed, "the configured command fails")
	assert.Contains(t, stdout.String(), "✖ *.txt (1 file)")
}

func TestRun_NotARepository(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Mode:     mode.All,
		Dir:      t.TempDir(),
		Patterns: []task.Pattern{{Glob: "*", Commands: task.Literals([]string{"true"})}},
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	})

	assert.ErrorIs(t, err, git.ErrNotGitRepository)
}

func TestRun_InvalidMode(t *testing.T) {
	_, err := Run(context.Background(), Options{Mode: "sideways", Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})

	var modeErr *mode.InvalidModeError
	assert.ErrorAs(t, err, &modeErr)
}

func TestLoadConfig_OverridesWin(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Linters = []config.Linter{{Pattern: "*.js", Commands: []string{"eslint"}}}
	concurrent := config.Concurrency(3)
	relative := true

	merged, err := loadConfig(Options{
		Config:    cfg,
		Overrides: Overrides{Concurrent: &concurrent, Relative: &relative},
	}, "/repo", "/repo", discardLogger())

	require.NoError(t, err)
	assert.Equal(t, config.Concurrency(3), merged.Options.Concurrent)
	assert.True(t, merged.Options.Relative)
	assert.Equal(t, config.Unbounded, cfg.Options.Concurrent, "the caller's config is not modified")
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	concurrent := config.Concurrency(-5)

	_, err := loadConfig(Options{
		Config:    config.DefaultConfig(),
		Overrides: Overrides{Concurrent: &concurrent},
	}, "/repo", "/repo", discardLogger())

	var invalid *config.InvalidError
	assert.ErrorAs(t, err, &invalid)
}

func TestBuildPatterns(t *testing.T) {
	patterns, err := buildPatterns(nil, []config.Linter{
		{Pattern: "*.js", Commands: []string{"eslint", "prettier --check"}},
		{Pattern: "*.css", Commands: []string{"stylelint"}},
	})

	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, "*.js", patterns[0].Glob)
	assert.Equal(t, task.Literals([]string{"eslint", "prettier --check"}), patterns[0].Commands)

	_, err = buildPatterns(nil, []config.Linter{{Pattern: "src/[a-", Commands: []string{"x"}}})
	var patErr *task.InvalidPatternError
	assert.ErrorAs(t, err, &patErr)

	_, err = buildPatterns(nil, nil)
	var invalid *config.InvalidError
	assert.ErrorAs(t, err, &invalid)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
