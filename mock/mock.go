// Package mock provides function-field test doubles for commitstack
// interfaces.
package mock

import (
	"context"
	"time"

	"commitstack"
)

// Compile-time interface verification.
var (
	_ commitstack.Parser        = (*Parser)(nil)
	_ commitstack.GitRunner     = (*GitRunner)(nil)
	_ commitstack.Planner       = (*Planner)(nil)
	_ commitstack.PatchVerifier = (*PatchVerifier)(nil)
)

// Parser is a mock implementation of commitstack.Parser.
type Parser struct {
	ParseFn func(diffText string) ([]commitstack.FileDiff, []string)
}

func (p *Parser) Parse(diffText string) ([]commitstack.FileDiff, []string) {
	return p.ParseFn(diffText)
}

// Planner is a mock implementation of commitstack.Planner.
type Planner struct {
	PlanFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (p *Planner) Plan(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.PlanFn(ctx, systemPrompt, userPrompt)
}

// PatchVerifier is a mock implementation of commitstack.PatchVerifier.
type PatchVerifier struct {
	VerifyFn func(patchText string) error
}

func (v *PatchVerifier) Verify(patchText string) error {
	return v.VerifyFn(patchText)
}

// Sleeper records requested delays without sleeping.
type Sleeper struct {
	Slept []time.Duration
}

func (s *Sleeper) Sleep(d time.Duration) {
	s.Slept = append(s.Slept, d)
}

// GitRunner is a mock implementation of commitstack.GitRunner. Unset
// functions fall back to benign defaults so tests only stub what they use.
type GitRunner struct {
	RepoRootFn       func(ctx context.Context) (string, error)
	HeadFn           func(ctx context.Context) (string, error)
	BranchFn         func(ctx context.Context) (string, error)
	StagedDiffFn     func(ctx context.Context) (string, error)
	StagedFilesFn    func(ctx context.Context) ([]string, error)
	RecentSubjectsFn func(ctx context.Context, n int) ([]string, error)
	ResetIndexFn     func(ctx context.Context) error
	ApplyCachedFn    func(ctx context.Context, patchPath string) error
	CommitFn         func(ctx context.Context, msgPath string) error
}

func (g *GitRunner) RepoRoot(ctx context.Context) (string, error) {
	if g.RepoRootFn == nil {
		return "", nil
	}
	return g.RepoRootFn(ctx)
}

func (g *GitRunner) Head(ctx context.Context) (string, error) {
	if g.HeadFn == nil {
		return "", nil
	}
	return g.HeadFn(ctx)
}

func (g *GitRunner) Branch(ctx context.Context) (string, error) {
	if g.BranchFn == nil {
		return "", nil
	}
	return g.BranchFn(ctx)
}

func (g *GitRunner) StagedDiff(ctx context.Context) (string, error) {
	if g.StagedDiffFn == nil {
		return "", nil
	}
	return g.StagedDiffFn(ctx)
}

func (g *GitRunner) StagedFiles(ctx context.Context) ([]string, error) {
	if g.StagedFilesFn == nil {
		return nil, nil
	}
	return g.StagedFilesFn(ctx)
}

func (g *GitRunner) RecentSubjects(ctx context.Context, n int) ([]string, error) {
	if g.RecentSubjectsFn == nil {
		return nil, nil
	}
	return g.RecentSubjectsFn(ctx, n)
}

func (g *GitRunner) ResetIndex(ctx context.Context) error {
	if g.ResetIndexFn == nil {
		return nil
	}
	return g.ResetIndexFn(ctx)
}

func (g *GitRunner) ApplyCached(ctx context.Context, patchPath string) error {
	if g.ApplyCachedFn == nil {
		return nil
	}
	return g.ApplyCachedFn(ctx, patchPath)
}

func (g *GitRunner) Commit(ctx context.Context, msgPath string) error {
	if g.CommitFn == nil {
		return nil
	}
	return g.CommitFn(ctx, msgPath)
}
