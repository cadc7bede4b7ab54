package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// DefaultVersion is overridden at build time with -ldflags "-X ...cli.DefaultVersion=vX.Y.Z"
var DefaultVersion = "v0.1.0"

// NewVersionCmd creates a new version command
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Loadplan",
		Long:  `Print the version number of the Loadplan CLI.`,
		Run: func(cmd *cobra.Command, args []string) {
			version := os.Getenv("LOADPLAN_VERSION")
			if version == "" {
				version = DefaultVersion
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loadplan CLI %s\n", version)
		},
	}

	return cmd
}
