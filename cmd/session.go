package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/arbor/cli"
	"github.com/grovetools/arbor/config"
	"github.com/grovetools/arbor/session"
)

// NewSessionCmd creates the `session` command group.
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Resume or create AI-agent sessions for worktrees",
	}

	cmd.AddCommand(newSessionOpenCmd())
	cmd.AddCommand(newSessionSetupCmd())
	return cmd
}

func newSessionOpenCmd() *cobra.Command {
	var task string

	cmd := &cobra.Command{
		Use:   "open <worktree>",
		Short: "Resume the worktree's session, or create one on provider switch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := runSession(cmd, args[0], task, false)
			if err != nil {
				return reportErr(err)
			}

			report := cli.FromOutcome(outcome)
			fmt.Println(report)
			if report.Status == cli.StatusError {
				return errSilent
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&task, "task", "t", "", "Task description handed to the agent")
	return cmd
}

func newSessionSetupCmd() *cobra.Command {
	var task string

	cmd := &cobra.Command{
		Use:   "setup <worktree>",
		Short: "Create a fresh session for the worktree's active provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := runSession(cmd, args[0], task, true)
			if err != nil {
				return reportErr(err)
			}

			fmt.Println(cli.FromOutcome(outcome))
			return nil
		},
	}

	cmd.Flags().StringVarP(&task, "task", "t", "", "Task description handed to the agent")
	return cmd
}

func runSession(cmd *cobra.Command, identifier, task string, setup bool) (*session.Outcome, error) {
	d, err := newDeps()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	root, err := d.worktreesRoot(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}

	req := session.Request{
		Root:            root,
		Identifier:      identifier,
		TaskDescription: task,
	}

	if setup {
		return d.resolver.Setup(cmd.Context(), cfg, req)
	}
	return d.resolver.Resolve(cmd.Context(), cfg, req)
}
