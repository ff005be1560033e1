package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "showscribe",
	Short: "Process YouTube videos and track per-user usage",
	Long: `showscribe fetches YouTube video metadata and captions, merges them
into a single transcript result, and tracks per-user monthly usage
against subscription plan limits.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
