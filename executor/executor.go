// Package executor applies a validated compose plan to the git index with
// transactional rollback on failure.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"commitstack"
)

// InterCommitDelay spaces out consecutive commits so each receives a
// visibly distinct timestamp in history.
const InterCommitDelay = time.Second

// Sleeper abstracts the inter-commit delay for testing.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// RenderFunc produces the commit message for a planned commit. Message
// rendering is an external concern; the executor consumes the result as an
// opaque string.
type RenderFunc func(commit commitstack.PlannedCommit) (string, error)

// ExecutionError is a fatal mid-execution failure that triggers rollback.
type ExecutionError struct {
	CommitID string
	Msg      string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (commit %s): %v", e.Msg, e.CommitID, e.Err)
	}
	return fmt.Sprintf("%s (commit %s)", e.Msg, e.CommitID)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Snapshot captures repository state immediately before execution. Both
// values are also written to scratch files so recovery material survives a
// process crash, not just an in-memory failure.
type Snapshot struct {
	PreHead        string
	PreStagedPatch string
	HeadFile       string
	PatchFile      string // Empty when nothing was staged
}

// Result reports what one execution attempt did to the repository.
type Result struct {
	CommitsCreated int
	RolledBack     bool
	RestoreLog     []string
}

// Executor runs a compose plan against a repository. It assumes exclusive
// ownership of the index and HEAD for the duration of one attempt;
// concurrent git operations against the same working tree are a documented
// precondition violation, not something it guards against.
type Executor struct {
	git        commitstack.GitRunner
	verifier   commitstack.PatchVerifier
	scratchDir string
	pid        int
	sleeper    Sleeper
}

// New creates an Executor writing scratch files under scratchDir.
func New(git commitstack.GitRunner, verifier commitstack.PatchVerifier, scratchDir string) *Executor {
	return &Executor{
		git:        git,
		verifier:   verifier,
		scratchDir: scratchDir,
		pid:        os.Getpid(),
		sleeper:    realSleeper{},
	}
}

// WithSleeper replaces the inter-commit delay implementation. Used in tests.
func (e *Executor) WithSleeper(s Sleeper) *Executor {
	e.sleeper = s
	return e
}

func (e *Executor) scratchPath(kind, label string) string {
	return filepath.Join(e.scratchDir, fmt.Sprintf("commitstack_compose_%s_%s_%d", kind, label, e.pid))
}

// CreateSnapshot records the current HEAD hash and staged diff, durably.
func (e *Executor) CreateSnapshot(ctx context.Context) (*Snapshot, error) {
	if err := os.MkdirAll(e.scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}

	head, err := e.git.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	staged, err := e.git.StagedDiff(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading staged diff: %w", err)
	}

	snap := &Snapshot{
		PreHead:        head,
		PreStagedPatch: staged,
		HeadFile:       e.scratchPath("pre_head", "snap") + ".txt",
	}
	if err := os.WriteFile(snap.HeadFile, []byte(head), 0o644); err != nil {
		return nil, fmt.Errorf("writing HEAD snapshot: %w", err)
	}
	if staged != "" {
		snap.PatchFile = e.scratchPath("pre_staged", "snap") + ".patch"
		if err := os.WriteFile(snap.PatchFile, []byte(staged), 0o644); err != nil {
			return nil, fmt.Errorf("writing staged snapshot: %w", err)
		}
	}
	return snap, nil
}

// Execute applies the plan's commits in order. On any failure it restores
// the pre-execution stage and reports how many commits were already
// created; those commits are not undone automatically. The returned Result
// is valid even when err is non-nil.
func (e *Executor) Execute(ctx context.Context, plan *commitstack.ComposePlan, inv *commitstack.Inventory, fileDiffs []commitstack.FileDiff, render RenderFunc) (*Result, error) {
	snap, err := e.CreateSnapshot(ctx)
	if err != nil {
		return &Result{}, err
	}

	// The plan's patches assume a clean index.
	if err := e.git.ResetIndex(ctx); err != nil {
		return &Result{}, fmt.Errorf("resetting index: %w", err)
	}

	result := &Result{}
	for i, commit := range plan.Commits {
		if i > 0 {
			e.sleeper.Sleep(InterCommitDelay)
		}

		if err := e.executeCommit(ctx, commit, inv, fileDiffs, render); err != nil {
			result.RolledBack = true
			result.RestoreLog = e.restore(ctx, snap, result.CommitsCreated)
			return result, err
		}
		result.CommitsCreated++
	}

	e.cleanup()
	return result, nil
}

func (e *Executor) executeCommit(ctx context.Context, commit commitstack.PlannedCommit, inv *commitstack.Inventory, fileDiffs []commitstack.FileDiff, render RenderFunc) error {
	patch := commitstack.BuildCommitPatch(commit, inv, fileDiffs)
	if strings.TrimSpace(patch) == "" {
		// An empty patch means an upstream invariant broke; a silent
		// no-op commit would hide it.
		return &ExecutionError{CommitID: commit.ID, Msg: "empty patch"}
	}
	if err := e.verifier.Verify(patch); err != nil {
		return &ExecutionError{CommitID: commit.ID, Msg: "invalid patch", Err: err}
	}

	patchFile := e.scratchPath("patch", commit.ID) + ".patch"
	if err := os.WriteFile(patchFile, []byte(patch), 0o644); err != nil {
		return &ExecutionError{CommitID: commit.ID, Msg: "writing patch file", Err: err}
	}

	if err := e.git.ApplyCached(ctx, patchFile); err != nil {
		return &ExecutionError{CommitID: commit.ID, Msg: "failed to apply patch", Err: err}
	}

	staged, err := e.git.StagedFiles(ctx)
	if err != nil {
		return &ExecutionError{CommitID: commit.ID, Msg: "checking staged files", Err: err}
	}
	if len(staged) == 0 {
		return &ExecutionError{CommitID: commit.ID, Msg: "no changes staged after applying patch"}
	}

	message, err := render(commit)
	if err != nil {
		return &ExecutionError{CommitID: commit.ID, Msg: "rendering message", Err: err}
	}
	msgFile := e.scratchPath("msg", commit.ID) + ".txt"
	if err := os.WriteFile(msgFile, []byte(message), 0o644); err != nil {
		return &ExecutionError{CommitID: commit.ID, Msg: "writing message file", Err: err}
	}

	if err := e.git.Commit(ctx, msgFile); err != nil {
		return &ExecutionError{CommitID: commit.ID, Msg: "failed to commit", Err: err}
	}
	return nil
}

// restore resets the index and re-applies the snapshotted pre-execution
// stage. It always returns a log and never blocks the caller; a failed
// stage restore degrades to a warning plus manual-recovery guidance.
func (e *Executor) restore(ctx context.Context, snap *Snapshot, commitsCreated int) []string {
	var log []string

	if err := e.git.ResetIndex(ctx); err != nil {
		log = append(log, fmt.Sprintf("warning: failed to reset index: %v", err))
		return append(log, e.recoveryHint(snap, commitsCreated)...)
	}
	log = append(log, "reset index to HEAD")

	if snap.PatchFile != "" {
		if err := e.git.ApplyCached(ctx, snap.PatchFile); err != nil {
			log = append(log, fmt.Sprintf("warning: could not restore staged changes: %v", err))
		} else {
			log = append(log, "restored pre-execution staged changes")
		}
	}

	return append(log, e.recoveryHint(snap, commitsCreated)...)
}

func (e *Executor) recoveryHint(snap *Snapshot, commitsCreated int) []string {
	if commitsCreated == 0 {
		return nil
	}
	return []string{
		fmt.Sprintf("%d commit(s) were already created and have not been undone", commitsCreated),
		fmt.Sprintf("to remove them: git reset --soft %s", snap.PreHead),
	}
}

// cleanup removes this process's scratch files after a fully successful run.
func (e *Executor) cleanup() {
	pattern := filepath.Join(e.scratchDir, fmt.Sprintf("commitstack_compose_*_%d.*", e.pid))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, path := range matches {
		os.Remove(path)
	}
}
