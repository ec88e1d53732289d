package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command all subcommands attach to.
var rootCmd = &cobra.Command{
	Use:   "mingle",
	Short: "mingle social network API server",
	Long: `mingle is the backend of a small social network: accounts,
profiles, posts and a like/dislike reaction system.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
