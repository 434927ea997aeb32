package cli

import "github.com/spf13/cobra"

// NewRootCmd builds the commitstack root command with all subcommands
// registered.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "commitstack",
		Short:         "Generate commit messages and commit stacks from staged changes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMessageCmd(app))
	root.AddCommand(newComposeCmd(app))

	return root
}
