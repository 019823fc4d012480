// Package testhelpers provides shared utilities for tests that need a real git repository.
package testhelpers

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Repo is a throwaway git repository rooted in a test temp dir.
type Repo struct {
	t    *testing.T
	Root string
}

// RequireGit skips the test when no git binary is available or the platform
// has no POSIX shell for task commands.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	if runtime.GOOS == "windows" {
		t.Skip("tests use POSIX shell commands")
	}
}

// NewRepo initialises an empty repository.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	RequireGit(t)
	r := &Repo{t: t, Root: t.TempDir()}
	r.Git("init", "--quiet")
	return r
}

// Git runs git in the repository root and returns its combined output.
// Identity and signing are fixed so commits work on any machine.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	full := append([]string{
		"-c", "user.name=test",
		"-c", "user.email=test@example.com",
		"-c", "commit.gpgsign=false",
	}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = r.Root
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

// Path returns the absolute path of a slash-separated repository path.
func (r *Repo) Path(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// Write creates or replaces a file, creating parent directories.
func (r *Repo) Write(rel, content string) {
	r.t.Helper()
	path := r.Path(rel)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
}

// Read returns the working tree content of a file.
func (r *Repo) Read(rel string) string {
	r.t.Helper()
	data, err := os.ReadFile(r.Path(rel))
	require.NoError(r.t, err)
	return string(data)
}

// Staged returns the index content of a file.
func (r *Repo) Staged(rel string) string {
	r.t.Helper()
	return r.Git("show", ":"+rel)
}

// Stage writes content and adds it to the index.
func (r *Repo) Stage(rel, content string) {
	r.t.Helper()
	r.Write(rel, content)
	r.Git("add", "--", rel)
}

// Commit writes files, stages them and commits.
func (r *Repo) Commit(files map[string]string) {
	r.t.Helper()
	for rel, content := range files {
		r.Write(rel, content)
	}
	r.Git("add", "--all")
	r.Git("commit", "--quiet", "--allow-empty", "-m", "commit")
}
