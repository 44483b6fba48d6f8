package main

import (
	"fmt"
	"strings"

	"github.com/pulsekit/pulse/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the configuration file and print the effective settings.

Exits non-zero if the configuration is invalid.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  Listen:    %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Base URL:  %s\n", cfg.Server.BaseURL)
	fmt.Printf("  Database:  %s\n", cfg.Database.DSN)
	fmt.Printf("  Insights:  %s\n", cfg.Insights.Mode)
	fmt.Printf("  Metrics:   %v\n", cfg.Metrics.Enabled)
	fmt.Println()
	fmt.Printf("  Hot-reloadable fields:  %s\n", strings.Join(config.ReloadableFields(), ", "))
	fmt.Printf("  Restart-only fields:    %s\n", strings.Join(config.NonReloadableFields(), ", "))
	return nil
}
