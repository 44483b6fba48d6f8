package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Self-hosted product analytics with event tracking and AI insights",
	Long: `Pulse is a self-hosted product analytics platform.

It ingests events from a JavaScript snippet, aggregates them into
dashboards (active users, event frequency, retention, segments), and
generates AI-assisted insights about user behavior.

Quick start:
  pulse serve       # Start the server

Management:
  pulse users       # Manage dashboard accounts
  pulse projects    # Inspect tracked projects
  pulse validate    # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pulse.yaml", "config file path")
}
