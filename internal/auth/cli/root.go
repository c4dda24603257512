// Package cli holds the assettrack command tree: the server itself plus the
// maintenance commands an operator runs against the same database.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/assettrack/internal/auth/app"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "assettrack",
		Short: "AssetTrack authentication service",
		Long: "Runs the AssetTrack authentication service. Without a subcommand it " +
			"serves the HTTP API; configuration is read from the environment.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(app.LoadConfig())
		},
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newHashPasswordCmd(),
		newDisableMFACmd(),
		newResetPasswordCmd(),
		newVersionCmd(),
	)
	return rootCmd
}
