package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewVersionCmd creates the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the arbor version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("arbor %s\n", Version)
			fmt.Printf("  Commit:    %s\n", Commit)
			fmt.Printf("  Built:     %s\n", BuildDate)
			fmt.Printf("  Arch:      %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
