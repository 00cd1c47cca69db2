package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the arbor root command with the standard flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "arbor",
		Short:         "Isolated git worktrees with auto-commit and AI-agent session continuity",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Loggers read the level from the environment at creation time,
			// and none exist before RunE starts.
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				os.Setenv("ARBOR_LOG_LEVEL", "debug")
			}
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("root", "", "Worktrees directory (default: <repo>/.arbor-worktrees)")

	cmd.AddCommand(NewCreateCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewSessionCmd())
	cmd.AddCommand(NewAutoCommitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
