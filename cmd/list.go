package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grovetools/arbor/metadata"
)

// NewListCmd creates the `list` command.
func NewListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List worktrees and their session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return reportErr(err)
			}

			root, err := d.worktreesRoot(cmd.Context(), cmd)
			if err != nil {
				return reportErr(err)
			}

			docs, err := d.store.Discover(root)
			if err != nil {
				return reportErr(err)
			}

			if !all {
				active := docs[:0]
				for _, md := range docs {
					if md.Status != metadata.StatusArchived {
						active = append(active, md)
					}
				}
				docs = active
			}

			if len(docs) == 0 {
				fmt.Println("No worktrees found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBRANCH\tSTATUS\tSESSIONS\tPATH")
			for _, md := range docs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					md.Name, md.Branch, md.Status, sessionSummary(md), md.Path)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived worktrees")
	return cmd
}

func sessionSummary(md *metadata.WorktreeMetadata) string {
	summary := ""
	for _, provider := range []string{metadata.ProviderClaude, metadata.ProviderCursor} {
		if record := md.Session(provider); record.Live() {
			if summary != "" {
				summary += ","
			}
			summary += provider
		}
	}
	if summary == "" {
		return "-"
	}
	return summary
}
