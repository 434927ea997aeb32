package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitstack"
	"commitstack/cli"
	"commitstack/config"
	"commitstack/mock"
)

func testFileDiffs() []commitstack.FileDiff {
	return []commitstack.FileDiff{
		{
			FilePath:        "a.go",
			DiffHeaderLines: []string{"diff --git a/a.go b/a.go", "--- a/a.go", "+++ b/a.go"},
			Hunks: []commitstack.Hunk{{
				ID:       "H1_aaaaaa",
				FilePath: "a.go",
				Header:   "@@ -1,2 +1,3 @@",
				OldStart: 1, OldLen: 2, NewStart: 1, NewLen: 3,
				Lines: []string{"@@ -1,2 +1,3 @@", " x", "+y", " z"},
			}},
		},
		{
			FilePath:        "b.go",
			DiffHeaderLines: []string{"diff --git a/b.go b/b.go", "--- a/b.go", "+++ b/b.go"},
			Hunks: []commitstack.Hunk{{
				ID:       "H2_bbbbbb",
				FilePath: "b.go",
				Header:   "@@ -1 +1 @@",
				OldStart: 1, OldLen: 1, NewStart: 1, NewLen: 1,
				Lines: []string{"@@ -1 +1 @@", "-old", "+new"},
			}},
		},
	}
}

const testPlanJSON = `{
  "version": "1",
  "commits": [
    {"id": "C1", "type": "feat", "title": "Extend a", "bullets": ["add y"], "hunks": ["H1_aaaaaa"]},
    {"id": "C2", "type": "fix", "title": "Swap b", "bullets": [], "hunks": ["H2_bbbbbb"]}
  ]
}`

func testApp(t *testing.T, planResponse string) (*cli.App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	repoRoot := t.TempDir()

	app := &cli.App{
		Out: out,
		Err: errOut,
		In:  strings.NewReader(""),
		Git: &mock.GitRunner{
			RepoRootFn:   func(ctx context.Context) (string, error) { return repoRoot, nil },
			HeadFn:       func(ctx context.Context) (string, error) { return "abc123", nil },
			BranchFn:     func(ctx context.Context) (string, error) { return "main", nil },
			StagedDiffFn: func(ctx context.Context) (string, error) { return "diff --git a/a.go b/a.go\n", nil },
			StagedFilesFn: func(ctx context.Context) ([]string, error) {
				return []string{"a.go"}, nil
			},
			RecentSubjectsFn: func(ctx context.Context, n int) ([]string, error) {
				return []string{"previous commit"}, nil
			},
		},
		Parser: &mock.Parser{
			ParseFn: func(diffText string) ([]commitstack.FileDiff, []string) {
				return testFileDiffs(), nil
			},
		},
		Planner: &mock.Planner{
			PlanFn: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
				return planResponse, nil
			},
		},
		Verifier: &mock.PatchVerifier{VerifyFn: func(string) error { return nil }},
		Config:   config.Default(),
	}
	return app, out, errOut
}

func runCommand(t *testing.T, app *cli.App, args ...string) error {
	t.Helper()
	root := cli.NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	return root.ExecuteContext(context.Background())
}

func TestCompose_PlanOnly(t *testing.T) {
	t.Parallel()

	app, out, errOut := testApp(t, testPlanJSON)

	err := runCommand(t, app, "compose")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Proposed commit stack (2 commits, new)")
	assert.Contains(t, out.String(), "feat: Extend a")
	assert.Contains(t, out.String(), "fix: Swap b")
	assert.Contains(t, out.String(), "(1 hunks)")
	assert.Contains(t, errOut.String(), "plan only; run with --commit to execute")
}

func TestCompose_NoStagedChanges(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, testPlanJSON)
	app.Git = &mock.GitRunner{
		RepoRootFn:   func(ctx context.Context) (string, error) { return t.TempDir(), nil },
		StagedDiffFn: func(ctx context.Context) (string, error) { return "", nil },
	}

	err := runCommand(t, app, "compose")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no staged changes")
}

func TestCompose_InvalidPlan(t *testing.T) {
	t.Parallel()

	badPlan := `{"commits": [{"id": "C1", "title": "", "hunks": ["H9_zzzzzz"]}]}`
	app, _, errOut := testApp(t, badPlan)

	err := runCommand(t, app, "compose")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid plan")
	assert.Contains(t, errOut.String(), "references unknown hunk")
	assert.Contains(t, errOut.String(), "has no title")
}

func TestCompose_CorrectsMistypedHunkIDs(t *testing.T) {
	t.Parallel()

	// H1 with a wrong hash suffix has exactly one inventory candidate.
	mistyped := `{"commits": [
		{"id": "C1", "title": "Extend a", "hunks": ["H1_ffffff"]},
		{"id": "C2", "title": "Swap b", "hunks": ["H2_bbbbbb"]}
	]}`
	app, _, errOut := testApp(t, mistyped)

	err := runCommand(t, app, "compose")

	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "auto-corrected hunk ID errors:")
	assert.Contains(t, errOut.String(), "H1_ffffff -> H1_aaaaaa")
}

func TestCompose_CachedPlanReused(t *testing.T) {
	t.Parallel()

	planCalls := 0
	app, _, errOut := testApp(t, testPlanJSON)
	app.Planner = &mock.Planner{
		PlanFn: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			planCalls++
			return testPlanJSON, nil
		},
	}

	require.NoError(t, runCommand(t, app, "compose"))
	require.Equal(t, 1, planCalls)

	errOut.Reset()
	require.NoError(t, runCommand(t, app, "compose"))

	assert.Equal(t, 1, planCalls)
	assert.Contains(t, errOut.String(), "using cached compose plan")
}

func TestCompose_RegenerateBypassesCache(t *testing.T) {
	t.Parallel()

	planCalls := 0
	app, _, _ := testApp(t, testPlanJSON)
	app.Planner = &mock.Planner{
		PlanFn: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			planCalls++
			return testPlanJSON, nil
		},
	}

	require.NoError(t, runCommand(t, app, "compose"))
	require.NoError(t, runCommand(t, app, "compose", "--regenerate"))

	assert.Equal(t, 2, planCalls)
}

func TestCompose_DebugPrintsPromptAndResponse(t *testing.T) {
	t.Parallel()

	app, _, errOut := testApp(t, testPlanJSON)

	err := runCommand(t, app, "compose", "--debug")

	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "--- prompt ---")
	assert.Contains(t, errOut.String(), "[HUNK INVENTORY]")
	assert.Contains(t, errOut.String(), "--- raw response ---")
}

func TestCompose_CommitYes(t *testing.T) {
	t.Parallel()

	singleCommit := `{"commits": [{"id": "C1", "title": "Extend a", "hunks": ["H1_aaaaaa", "H2_bbbbbb"]}]}`
	app, _, errOut := testApp(t, singleCommit)

	commits := 0
	git := app.Git.(*mock.GitRunner)
	git.CommitFn = func(ctx context.Context, msgPath string) error {
		commits++
		return nil
	}

	err := runCommand(t, app, "compose", "--commit", "--yes")

	require.NoError(t, err)
	assert.Equal(t, 1, commits)
	assert.Contains(t, errOut.String(), "created 1 commit(s)")
}

func TestCompose_ConfirmDeclined(t *testing.T) {
	t.Parallel()

	app, _, errOut := testApp(t, testPlanJSON)
	app.In = strings.NewReader("n\n")

	commits := 0
	git := app.Git.(*mock.GitRunner)
	git.CommitFn = func(ctx context.Context, msgPath string) error {
		commits++
		return nil
	}

	err := runCommand(t, app, "compose", "--commit")

	require.NoError(t, err)
	assert.Equal(t, 0, commits)
	assert.Contains(t, errOut.String(), "cancelled")
}
