// Package git provides access to git operations via shell commands.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"commitstack"
)

// Compile-time interface verification.
var _ commitstack.GitRunner = (*Runner)(nil)

// Error wraps a failed git invocation with its stderr output.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s failed: %s", strings.Join(e.Args, " "), e.Stderr)
	}
	return fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Runner executes git commands via shell in a fixed repository directory.
type Runner struct {
	dir string
}

// NewRunner creates a runner operating on the repository at dir.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	output, err := cmd.Output()
	if err != nil {
		gitErr := &Error{Args: args, Err: err}
		if exitErr, ok := err.(*exec.ExitError); ok {
			gitErr.Stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", gitErr
	}
	return string(output), nil
}

// RepoRoot returns the absolute path of the repository root.
func (r *Runner) RepoRoot(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--show-toplevel")
	return strings.TrimSpace(out), err
}

// Head returns the current HEAD commit hash.
func (r *Runner) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	return strings.TrimSpace(out), err
}

// Branch returns the current branch name.
func (r *Runner) Branch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	return strings.TrimSpace(out), err
}

// StagedDiff returns the full staged diff in patch form.
func (r *Runner) StagedDiff(ctx context.Context) (string, error) {
	return r.run(ctx, "diff", "--cached", "--patch")
}

// StagedFiles returns the paths currently staged.
func (r *Runner) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// RecentSubjects returns the subjects of the last n commits, newest first.
func (r *Runner) RecentSubjects(ctx context.Context, n int) ([]string, error) {
	out, err := r.run(ctx, "log", "--format=%s", fmt.Sprintf("-n%d", n))
	if err != nil {
		return nil, err
	}
	var subjects []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}

// ResetIndex resets the index to HEAD without touching the working tree.
func (r *Runner) ResetIndex(ctx context.Context) error {
	_, err := r.run(ctx, "reset")
	return err
}

// ApplyCached applies the patch at patchPath to the index only.
func (r *Runner) ApplyCached(ctx context.Context, patchPath string) error {
	_, err := r.run(ctx, "apply", "--cached", patchPath)
	return err
}

// Commit commits the index using the message stored at msgPath.
func (r *Runner) Commit(ctx context.Context, msgPath string) error {
	_, err := r.run(ctx, "commit", "-F", msgPath)
	return err
}
