package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/arbor/autocommit"
	"github.com/grovetools/arbor/git"
	"github.com/grovetools/arbor/metadata"
	"github.com/grovetools/arbor/session"
	"github.com/grovetools/arbor/worktree"
)

// deps holds the shared wiring for subcommands.
type deps struct {
	store       *metadata.Store
	runner      git.Runner
	manager     *worktree.Manager
	coordinator *autocommit.Coordinator
	resolver    *session.Resolver
}

func newDeps() (*deps, error) {
	store, err := metadata.NewStore()
	if err != nil {
		return nil, err
	}

	runner := git.NewCLI()
	return &deps{
		store:       store,
		runner:      runner,
		manager:     worktree.NewManager(store, runner),
		coordinator: autocommit.NewCoordinator(store, runner),
		resolver:    session.NewResolver(store, session.DefaultProviders()),
	}, nil
}

// worktreesRoot resolves the --root flag, defaulting to the repository's
// worktrees directory.
func (d *deps) worktreesRoot(ctx context.Context, cmd *cobra.Command) (string, error) {
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		return root, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return d.manager.Root(ctx, cwd)
}
