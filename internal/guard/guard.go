// Package guard protects the unstaged part of partially staged files while tasks
// rewrite the working tree.
//
// Before tasks run the unstaged changes of tracked files are written to a patch
// and the working tree is reset to the index, so tasks only see staged content.
// Afterwards the patch is applied on top of whatever the tasks left behind. A
// stash-list entry holding the full pre-run state is kept until that succeeds.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// BackupMessage labels the stash-list entry created for each snapshot.
const BackupMessage = "lintit automatic backup"

// PatchFileName is the name of the patch file written into the git directory.
const PatchFileName = "lintit_unstaged.patch"

// State is a step in the guard's lifecycle.
type State int

const (
	Idle State = iota
	SnapshotPending
	Snapshotted
	Reconciling
	ReconcileFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SnapshotPending:
		return "snapshot-pending"
	case Snapshotted:
		return "snapshotted"
	case Reconciling:
		return "reconciling"
	case ReconcileFailed:
		return "reconcile-failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Snapshot locates the set-aside changes.
type Snapshot struct {
	// Files are the partially staged files at save time.
	Files []string
	// IndexTree is the index as it was before tasks ran.
	IndexTree string
	// PostTree is the index recorded by Update after tasks passed.
	PostTree string
	// PatchPath holds the unstaged changes of tracked files.
	PatchPath string
	// BackupCommit is the stash commit kept in the stash list until restore succeeds.
	BackupCommit string
}

// plumbing is the git surface the guard needs.
type plumbing interface {
	PartiallyStaged(ctx context.Context) ([]string, error)
	GitDir(ctx context.Context) (string, error)
	StashCreate(ctx context.Context) (string, error)
	StashStore(ctx context.Context, commit, message string) error
	StashDrop(ctx context.Context, commit string) error
	WriteTree(ctx context.Context) (string, error)
	ReadTree(ctx context.Context, tree string) error
	DiffWorktree(ctx context.Context, output string) error
	CheckoutIndex(ctx context.Context) error
	Apply(ctx context.Context, patch string, threeWay bool) error
}

// Guard runs the snapshot lifecycle for one run. It is not reusable after ReconcileFailed.
type Guard struct {
	git     plumbing
	enabled bool
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	snapshot *Snapshot
}

// New creates a Guard. A disabled guard accepts every transition and does nothing.
func New(git plumbing, enabled bool, logger *slog.Logger) *Guard {
	if git == nil {
		panic("git is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Guard{git: git, enabled: enabled, logger: logger}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Snapshot returns the active snapshot, if any.
func (g *Guard) Snapshot() (Snapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot == nil {
		return Snapshot{}, false
	}
	return *g.snapshot, true
}

// Begin announces that a run is about to start.
func (g *Guard) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled {
		return nil
	}
	if g.state != Idle {
		return &TransitionError{Op: "begin", State: g.state}
	}
	g.state = SnapshotPending
	return nil
}

// Save sets unstaged changes aside. It returns to Idle without touching anything
// when no file is partially staged. On failure the working tree is rolled back
// and an *Error is returned.
func (g *Guard) Save(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled {
		return nil
	}
	if g.state != SnapshotPending {
		return &TransitionError{Op: "save", State: g.state}
	}

	files, err := g.git.PartiallyStaged(ctx)
	if err != nil {
		g.state = Idle
		return &Error{Step: "detect partially staged files", Cause: err}
	}
	if len(files) == 0 {
		g.logger.Debug("no partially staged files, skipping snapshot")
		g.state = Idle
		return nil
	}
	g.logger.Debug("setting unstaged changes aside", "files", files)

	snap := &Snapshot{Files: files}
	if err := g.save(ctx, snap); err != nil {
		return g.rollback(ctx, snap, err)
	}

	g.snapshot = snap
	g.state = Snapshotted
	return nil
}

func (g *Guard) save(ctx context.Context, snap *Snapshot) error {
	commit, err := g.git.StashCreate(ctx)
	if err != nil {
		return &Error{Step: "create backup", Cause: err}
	}
	if commit != "" {
		if err := g.git.StashStore(ctx, commit, BackupMessage); err != nil {
			return &Error{Step: "store backup", Cause: err}
		}
		snap.BackupCommit = commit
	}

	tree, err := g.git.WriteTree(ctx)
	if err != nil {
		return &Error{Step: "record index", Cause: err}
	}
	snap.IndexTree = tree

	gitDir, err := g.git.GitDir(ctx)
	if err != nil {
		return &Error{Step: "locate git directory", Cause: err}
	}
	patch := filepath.Join(gitDir, PatchFileName)
	if _, err := os.Stat(patch); err == nil {
		g.logger.Warn("overwriting patch left by an earlier run", "path", patch)
	}
	if err := g.git.DiffWorktree(ctx, patch); err != nil {
		_ = os.Remove(patch)
		return &Error{Step: "write patch", Cause: err}
	}
	snap.PatchPath = patch

	if err := g.git.CheckoutIndex(ctx); err != nil {
		return &Error{Step: "hide unstaged changes", Cause: err}
	}
	return nil
}

// rollback undoes a partial save. Without a patch nothing in the working tree
// changed yet, so only the backup entry is dropped.
// Callers must hold g.mu.
func (g *Guard) rollback(ctx context.Context, snap *Snapshot, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if snap.PatchPath != "" {
		if err := g.restore(ctx, snap); err != nil {
			g.snapshot = snap
			g.state = ReconcileFailed
			return &ReconcileError{Snapshot: *snap, Cause: errors.Join(cause, err)}
		}
	}
	g.cleanup(ctx, snap)
	g.state = Idle
	return cause
}

// Update records the index the passing tasks produced so restore can keep it.
func (g *Guard) Update(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled || g.state == Idle {
		return nil
	}
	if g.state != Snapshotted {
		return &TransitionError{Op: "update", State: g.state}
	}
	tree, err := g.git.WriteTree(ctx)
	if err != nil {
		return &Error{Step: "record task output", Cause: err}
	}
	g.snapshot.PostTree = tree
	return nil
}

// Restore brings the unstaged changes back on top of whatever the tasks left in
// the index and working tree, whether they passed or not. Restore runs to
// completion even if ctx is cancelled.
//
// On success the patch and the backup entry are removed and the guard is Idle
// again. Otherwise the guard stays in ReconcileFailed and a *ReconcileError
// with the snapshot is returned.
func (g *Guard) Restore(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled || g.state == Idle {
		return nil
	}
	if g.state != Snapshotted {
		return &TransitionError{Op: "restore", State: g.state}
	}
	g.state = Reconciling
	ctx = context.WithoutCancel(ctx)
	snap := g.snapshot

	if err := g.restore(ctx, snap); err != nil {
		g.state = ReconcileFailed
		return &ReconcileError{Snapshot: *snap, Cause: err}
	}

	g.cleanup(ctx, snap)
	g.snapshot = nil
	g.state = Idle
	return nil
}

func (g *Guard) restore(ctx context.Context, snap *Snapshot) error {
	err := g.git.Apply(ctx, snap.PatchPath, false)
	if err == nil {
		return nil
	}
	g.logger.Debug("patch does not apply cleanly, retrying with a three-way merge", "error", err)

	// A failed plain apply leaves the index untouched, so it still holds the task output.
	index := snap.PostTree
	if index == "" {
		if index, err = g.git.WriteTree(ctx); err != nil {
			return err
		}
	}
	if err := g.git.Apply(ctx, snap.PatchPath, true); err != nil {
		return err
	}
	// A three-way apply also stages the merged content.
	return g.git.ReadTree(ctx, index)
}

func (g *Guard) cleanup(ctx context.Context, snap *Snapshot) {
	if snap.PatchPath != "" {
		if err := os.Remove(snap.PatchPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			g.logger.Warn("failed to remove patch", "path", snap.PatchPath, "error", err)
		}
	}
	if snap.BackupCommit != "" {
		if err := g.git.StashDrop(ctx, snap.BackupCommit); err != nil {
			g.logger.Warn("failed to drop backup stash entry", "commit", snap.BackupCommit, "error", err)
		}
	}
}
