// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "community-metrics",
	Short: "A CLI tool to compute community-health metrics for a GitHub repository.",
	Long: `community-metrics is a CLI tool that computes community-health metrics
(issue resolution rate, median issue resolution time, contributor count)
for a single GitHub repository.

Credentials and the target repository are read from GITHUB_TOKEN, OWNER and REPO,
which may also be placed in a .env file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add persistent flags available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Optional YAML config file")
}
