package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates a new root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadplan",
		Short: "Loadplan CLI",
		Long:  `Loadplan builds, validates and runs load-test plans whose elements are scripts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Check if debug flag is set
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				_ = os.Setenv(EnvLogLevel, "DEBUG")
			}

			// Initialize logging after potentially setting the debug env var
			InitLogging()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(
		NewValidateCmd(),
		NewRenderCmd(),
		NewRunCmd(),
		NewVersionCmd(),
	)

	return cmd
}
