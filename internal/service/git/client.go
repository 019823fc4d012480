// Package git wraps the git invocations lintit needs: file queries for selection and
// the plumbing used to set unstaged changes aside and bring them back.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/lintit/internal/service/executor"
)

// commandExecutor defines the interface for executing git commands.
type commandExecutor interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error)
}

// Client runs git commands in the root of one working tree.
type Client struct {
	executor commandExecutor
	root     string
}

// NewClient creates a Client bound to the working tree at root.
func NewClient(executor commandExecutor, root string) *Client {
	if executor == nil {
		panic("executor is required")
	}
	if root == "" {
		panic("root is required")
	}
	return &Client{executor: executor, root: root}
}

// Root returns the working tree root the client operates in.
func (c *Client) Root() string {
	return c.root
}

// run executes git with args and returns stdout.
// core.quotepath is disabled so paths come back verbatim.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	command := append([]string{"git", "-c", "core.quotepath=off"}, args...)
	result, err := c.executor.Run(ctx, command, c.root, nil)
	if err != nil {
		cmdErr := &CommandError{Args: args, Cause: err}
		if result != nil {
			cmdErr.Stderr = result.Stderr
			cmdErr.ExitCode = result.ExitCode
		}
		return "", cmdErr
	}
	if result.Truncated {
		return "", &CommandError{Args: args, Cause: ErrTruncatedOutput}
	}
	return result.Stdout, nil
}

// ListTracked lists every file in the index.
func (c *Client) ListTracked(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "ls-files")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ListModified lists files added, copied, modified or renamed relative to HEAD,
// staged or not.
func (c *Client) ListModified(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "diff", "--diff-filter=ACMR", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ListStaged lists files whose index entry differs from HEAD, excluding deletions.
func (c *Client) ListStaged(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "diff", "--staged", "--diff-filter=ACMR", "--name-only")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// PartiallyStaged lists files with both staged and unstaged changes.
func (c *Client) PartiallyStaged(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "status", "--porcelain", "-z")
	if err != nil {
		return nil, err
	}
	return parsePartiallyStaged(out), nil
}

// GitDir returns the absolute path of the repository's git directory.
func (c *Client) GitDir(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StashCreate records the index and working tree as a stash commit without
// touching either, and returns its hash.
func (c *Client) StashCreate(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "stash", "create")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StashStore adds commit to the stash list so it survives garbage collection.
func (c *Client) StashStore(ctx context.Context, commit, message string) error {
	_, err := c.run(ctx, "stash", "store", "--quiet", "-m", message, commit)
	return err
}

// StashDrop removes the stash list entry pointing at commit.
// Dropping an entry that is no longer listed is not an error.
func (c *Client) StashDrop(ctx context.Context, commit string) error {
	out, err := c.run(ctx, "stash", "list", "--format=%H")
	if err != nil {
		return err
	}
	for i, hash := range splitLines(out) {
		if hash == commit {
			_, err := c.run(ctx, "stash", "drop", "--quiet", fmt.Sprintf("stash@{%d}", i))
			return err
		}
	}
	return nil
}

// WriteTree writes the index as a tree object and returns its hash.
func (c *Client) WriteTree(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "write-tree")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ReadTree replaces the index with tree.
func (c *Client) ReadTree(ctx context.Context, tree string) error {
	_, err := c.run(ctx, "read-tree", tree)
	return err
}

// DiffWorktree writes a binary-safe patch of unstaged changes to tracked files into output.
func (c *Client) DiffWorktree(ctx context.Context, output string) error {
	_, err := c.run(ctx, "diff",
		"--binary",
		"--full-index",
		"--no-color",
		"--no-ext-diff",
		"--src-prefix=a/",
		"--dst-prefix=b/",
		"--output="+output,
	)
	return err
}

// CheckoutIndex overwrites every tracked file in the working tree with its index content.
func (c *Client) CheckoutIndex(ctx context.Context) error {
	_, err := c.run(ctx, "checkout-index", "--all", "--force")
	return err
}

// Apply applies the patch file to the working tree. With threeWay, git falls
// back to a three-way merge using the blobs recorded in the patch, which also
// updates the index.
func (c *Client) Apply(ctx context.Context, patch string, threeWay bool) error {
	args := []string{"apply", "--whitespace=nowarn", "--recount"}
	if threeWay {
		args = append(args, "--3way")
	}
	_, err := c.run(ctx, append(args, patch)...)
	return err
}

// splitLines splits command output into non-empty lines, handling \r\n endings.
func splitLines(out string) []string {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			files = append(files, line)
		}
	}
	return files
}

// parsePartiallyStaged reads `git status --porcelain -z` output. The first column is
// the index status and the second the working tree status; a file is partially
// staged when both columns carry a change and neither marks it untracked.
// Entries are NUL-terminated and paths are never quoted. A rename or copy is
// followed by an extra entry holding the source path.
func parsePartiallyStaged(out string) []string {
	var files []string
	entries := strings.Split(out, "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 4 {
			continue
		}
		index, worktree := entry[0], entry[1]
		if index == 'R' || index == 'C' || worktree == 'R' || worktree == 'C' {
			i++
		}
		if index == ' ' || worktree == ' ' || index == '?' || worktree == '?' {
			continue
		}
		files = append(files, entry[3:])
	}
	return files
}
