package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

// version is set at build time via ldflags.
//
//nolint:gochecknoglobals // Cobra boilerplate
var version = "dev"

//nolint:gochecknoglobals // Cobra boilerplate
var dbPath string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Serve and manage a live portfolio site",
	Long: `folio serves an artist portfolio backed by a SQLite document store.
Admin edits are pushed to every open browser tab as they commit.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite path (default $DATABASE_PATH or data/folio.db)")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (cfg folio.SiteConfig) {
	cfg = folio.LoadConfig()
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	return cfg
}
