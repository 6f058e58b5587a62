package commands

import (
	"context"

	"github.com/dyluth/artmatrix/internal/maintenance"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the connectivity test entry",
	Long: `Write a fixed test document to check that the store accepts writes.

The test key sits outside the 4x4 sub-grid, so it never appears in the
browser. Remove it with the store's own tools when done.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := maintenance.SeedTestEntry(ctx, store)
	if err != nil {
		return printer.Error("seed failed", err.Error(), nil)
	}

	printer.Success("Wrote test entry to collection %s\n", cfg.Store.Collection)
	printer.Field("Key", entry.Key)
	printer.Field("Title", entry.Title)
	printer.Field("Author", entry.Author)
	printer.Field("Year", entry.Year)
	return nil
}
