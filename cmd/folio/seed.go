package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/docstore"
	"github.com/eringen/folio/live"
)

//nolint:gochecknoglobals // Cobra boilerplate
var force bool

//nolint:gochecknoglobals // Cobra boilerplate
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the default portfolio content",
	Long: `Write the default categories, projects, contacts and profile.

Without --force nothing is written when categories already exist. With
--force the default documents overwrite any with the same ids; other
documents are left alone.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&force, "force", false, "Write even when the store already has content")
}

func runSeed(cmd *cobra.Command, args []string) (err error) {
	cfg := loadConfig()
	log := folio.NewLogger(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	docs, err := docstore.Open(cfg.DatabasePath, docstore.WithLogger(log))
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer docs.Close()

	if !force {
		snap, listErr := docs.List(ctx, docstore.Collection(content.CollectionCategories))
		if listErr != nil {
			return errors.Wrap(listErr, "list categories")
		}
		if !snap.Empty() {
			fmt.Fprintln(cmd.OutOrStdout(), "Store already has content; use --force to overwrite the defaults.")
			return nil
		}
	}

	writes := live.SeedWrites(content.SeedBundle(time.Now()))
	if err = docs.BatchWrite(ctx, writes); err != nil {
		return errors.Wrap(err, "write seed")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d documents into %s\n", len(writes), cfg.DatabasePath)
	return nil
}
