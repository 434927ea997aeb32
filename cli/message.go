package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"commitstack"
	"commitstack/style"
)

func newMessageCmd(app *App) *cobra.Command {
	var styleName string

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Generate a single commit message for the staged changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			diff, err := app.Git.StagedDiff(ctx)
			if err != nil {
				return err
			}
			if strings.TrimSpace(diff) == "" {
				return fmt.Errorf("no staged changes; stage changes with git add first")
			}

			branch, err := app.Git.Branch(ctx)
			if err != nil {
				return err
			}
			recent, err := app.Git.RecentSubjects(ctx, 5)
			if err != nil {
				return err
			}

			prompt := commitstack.BuildMessagePrompt(branch, recent, diff)
			raw, err := app.Planner.Plan(ctx, commitstack.MessageSystemPrompt, prompt)
			if err != nil {
				return err
			}

			commit, err := commitstack.ParseCommitMessage(raw)
			if err != nil {
				return err
			}

			// Fill gaps the model left from what the repository knows.
			if commit.Ticket == "" {
				commit.Ticket = style.TicketFromBranch(branch)
			}
			if commit.Type == "" {
				if staged, err := app.Git.StagedFiles(ctx); err == nil {
					commit.Type = style.InferType(staged)
				}
			}

			profile := style.ParseProfile(styleName)
			if styleName == "" {
				profile = style.ParseProfile(app.Config.Style.Profile)
			}
			fmt.Fprintln(app.Out, style.Render(*commit, styleConfig(app, profile)))
			return nil
		},
	}

	cmd.Flags().StringVar(&styleName, "style", "", "message style profile (default|conventional|ticket|kernel|blueprint)")

	return cmd
}
