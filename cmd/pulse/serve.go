package main

import (
	"fmt"
	"os"

	"github.com/pulsekit/pulse/bootstrap"
	"github.com/pulsekit/pulse/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveHotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analytics server",
	Long: `Start the Pulse server: dashboard, ingestion API, and stats API.

With hot reload enabled (the default), the config file is watched for
changes and SIGHUP triggers a reload. Fields that cannot be applied
without a restart are listed by 'pulse validate'.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveHotReload, "hot-reload", true, "reload config on file change and SIGHUP")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var a *bootstrap.App
	var err error

	if serveHotReload && fileExists(cfgFile) {
		a, err = bootstrap.NewWithHotReload(cfgFile, zerolog.New(os.Stderr).With().Timestamp().Logger())
	} else {
		var cfg *config.Config
		cfg, err = config.LoadWithFallback(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a, err = bootstrap.New(cfg)
	}
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	return a.Run()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
