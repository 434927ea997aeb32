package cli_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitstack/mock"
)

func TestMessage_RendersResponse(t *testing.T) {
	t.Parallel()

	app, out, _ := testApp(t, `{"type": "fix", "title": "Handle nil input", "bullets": ["guard the parser"]}`)
	app.Config.Style.Profile = "conventional"

	err := runCommand(t, app, "message")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "fix: Handle nil input")
	assert.Contains(t, out.String(), "- guard the parser")
}

func TestMessage_TicketFilledFromBranch(t *testing.T) {
	t.Parallel()

	app, out, _ := testApp(t, `{"type": "feat", "title": "Add pagination"}`)
	git := app.Git.(*mock.GitRunner)
	git.BranchFn = func(ctx context.Context) (string, error) {
		return "feature/PROJ-42-pagination", nil
	}

	err := runCommand(t, app, "message", "--style", "ticket")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "PROJ-42 Add pagination")
}

func TestMessage_TypeInferredFromStagedFiles(t *testing.T) {
	t.Parallel()

	app, out, _ := testApp(t, `{"title": "Clarify install steps"}`)
	git := app.Git.(*mock.GitRunner)
	git.StagedFilesFn = func(ctx context.Context) ([]string, error) {
		return []string{"README.md", "docs/install.md"}, nil
	}

	err := runCommand(t, app, "message", "--style", "conventional")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "docs: Clarify install steps")
}

func TestMessage_NoStagedChanges(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, "{}")
	git := app.Git.(*mock.GitRunner)
	git.StagedDiffFn = func(ctx context.Context) (string, error) { return "", nil }

	err := runCommand(t, app, "message")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no staged changes")
}

func TestMessage_PromptIncludesContext(t *testing.T) {
	t.Parallel()

	var sawUser string
	app, _, _ := testApp(t, `{"title": "Something"}`)
	planner := app.Planner.(*mock.Planner)
	base := planner.PlanFn
	planner.PlanFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		sawUser = userPrompt
		return base(ctx, systemPrompt, userPrompt)
	}

	require.NoError(t, runCommand(t, app, "message"))

	assert.Contains(t, sawUser, "Branch: main")
	assert.Contains(t, sawUser, "Recent commits: previous commit")
	assert.Contains(t, sawUser, "[STAGED DIFF]")
}
