package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/arbor/autocommit"
	"github.com/grovetools/arbor/cli"
	"github.com/grovetools/arbor/metadata"
)

// NewAutoCommitCmd creates the `autocommit` command group.
func NewAutoCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autocommit",
		Short: "Manage automatic commits for a worktree",
	}

	cmd.AddCommand(newAutoCommitEnableCmd())
	cmd.AddCommand(newAutoCommitDisableCmd())
	cmd.AddCommand(newAutoCommitStatusCmd())
	cmd.AddCommand(newAutoCommitCommitCmd())
	cmd.AddCommand(newAutoCommitWatchCmd())
	return cmd
}

// lookupWorktree resolves a worktree identifier under the configured root.
func lookupWorktree(cmd *cobra.Command, d *deps, identifier string) (*metadata.WorktreeMetadata, error) {
	root, err := d.worktreesRoot(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}
	return d.store.Lookup(root, identifier)
}

func newAutoCommitEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <worktree>",
		Short: "Turn on auto-commit for the worktree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return reportErr(err)
			}

			md, err := lookupWorktree(cmd, d, args[0])
			if err != nil {
				return reportErr(err)
			}

			if err := d.coordinator.Enable(md.Path); err != nil {
				return reportErr(err)
			}

			fmt.Println(cli.Success("Auto-commit enabled for worktree '%s'.", md.Name))
			return nil
		},
	}
}

func newAutoCommitDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <worktree>",
		Short: "Turn off auto-commit for the worktree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return reportErr(err)
			}

			md, err := lookupWorktree(cmd, d, args[0])
			if err != nil {
				return reportErr(err)
			}

			if err := d.coordinator.Disable(md.Path); err != nil {
				return reportErr(err)
			}

			fmt.Println(cli.Success("Auto-commit disabled for worktree '%s'.", md.Name))
			return nil
		},
	}
}

func newAutoCommitStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <worktree>",
		Short: "Show the worktree's auto-commit state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return reportErr(err)
			}

			md, err := lookupWorktree(cmd, d, args[0])
			if err != nil {
				return reportErr(err)
			}

			status, err := d.coordinator.Status(md.Path)
			if err != nil {
				return reportErr(err)
			}

			if status.NeedsInitialization {
				fmt.Printf("Worktree '%s' has no metadata document; run 'arbor create' first.\n", args[0])
				return nil
			}

			fmt.Printf("Worktree:        %s\n", md.Name)
			fmt.Printf("Enabled:         %t\n", status.Enabled)
			fmt.Printf("Processing:      %t\n", status.IsProcessing)
			fmt.Printf("Pending changes: %d\n", status.PendingChanges)
			fmt.Printf("Queue size:      %d\n", status.QueueSize)
			if status.LastCommit != nil {
				fmt.Printf("Last commit:     %s\n", status.LastCommit.Format(time.RFC3339))
			} else {
				fmt.Printf("Last commit:     never\n")
			}
			return nil
		},
	}
}

func newAutoCommitCommitCmd() *cobra.Command {
	var message string
	var push bool

	cmd := &cobra.Command{
		Use:   "commit <worktree>",
		Short: "Force a commit of all pending changes now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return reportErr(err)
			}

			md, err := lookupWorktree(cmd, d, args[0])
			if err != nil {
				return reportErr(err)
			}

			opts := autocommit.Options{MessageTemplate: message, Push: push}
			if err := d.coordinator.ForceCommit(cmd.Context(), md.Path, opts); err != nil {
				return reportErr(err)
			}

			fmt.Println(cli.Success("Committed pending changes in worktree '%s'.", md.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message template ({fileCount}, {timestamp})")
	cmd.Flags().BoolVar(&push, "push", false, "Push to origin after committing")
	return cmd
}

func newAutoCommitWatchCmd() *cobra.Command {
	var push bool

	cmd := &cobra.Command{
		Use:   "watch <worktree>",
		Short: "Watch the worktree and commit on an interval while enabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return reportErr(err)
			}

			md, err := lookupWorktree(cmd, d, args[0])
			if err != nil {
				return reportErr(err)
			}

			var watchCfg autocommit.WatchConfig
			if err := md.DecodeExtra("watch", &watchCfg); err != nil {
				return reportErr(err)
			}

			interval := autocommit.DefaultFlushInterval
			if watchCfg.Interval != "" {
				parsed, err := time.ParseDuration(watchCfg.Interval)
				if err != nil {
					return reportErr(fmt.Errorf("invalid watch interval %q: %w", watchCfg.Interval, err))
				}
				interval = parsed
			}

			watcher, err := autocommit.NewWatcher(d.coordinator, md.Path, watchCfg.Ignore, interval, autocommit.Options{Push: push})
			if err != nil {
				return reportErr(err)
			}

			fmt.Printf("Watching worktree '%s' (flush every %s). Press Ctrl-C to stop.\n", md.Name, interval)
			if err := watcher.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return reportErr(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&push, "push", false, "Push to origin after each commit")
	return cmd
}
