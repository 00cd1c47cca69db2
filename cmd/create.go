package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/arbor/cli"
)

// NewCreateCmd creates the `create` command.
func NewCreateCmd() *cobra.Command {
	var baseBranch string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an isolated worktree with its metadata document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return reportErr(err)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return reportErr(err)
			}

			md, err := d.manager.Create(cmd.Context(), cwd, args[0], baseBranch)
			if err != nil {
				return reportErr(err)
			}

			fmt.Println(cli.Success("Created worktree '%s' on branch '%s' at %s", md.Name, md.Branch, md.Path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&baseBranch, "base", "b", "", "Base branch to branch off (default: current branch)")
	return cmd
}

// reportErr prints the uniform failure block and returns a silent error so
// cobra exits non-zero without re-printing.
func reportErr(err error) error {
	fmt.Fprintln(os.Stderr, cli.FromError(err))
	return errSilent
}

var errSilent = fmt.Errorf("command failed")
