package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/artmatrix/internal/browse"
	"github.com/dyluth/artmatrix/internal/resolver"
	"github.com/dyluth/artmatrix/internal/session"
	"github.com/spf13/cobra"
)

var browseLogFile string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalogue in the terminal",
	Long: `Open the interactive grid browser.

Keys:
  Grid     arrows move, enter opens the 4x4 sub-grid, q quits
  Sub-grid arrows move, enter opens the entry, esc returns to the grid
  Detail   mouse wheel or j/k scrolls the description, then moves to the
           next or previous entry; pgdn/space and pgup step directly;
           esc returns to the sub-grid

Log output is written to a file while the browser owns the terminal.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseLogFile, "log-file", browse.DefaultLogFile, "File receiving log output (empty discards it)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	// Only the Redis store can issue anonymous identities
	var identity *session.IdentityBootstrap
	if signer, ok := store.(session.Signer); ok {
		identity = session.Bootstrap(ctx, signer, cfg.Identity.TTL)
	}

	r := resolver.New(store, resolver.WithStrictImages(cfg.StrictImages()))
	return browse.Run(ctx, browse.NewModel(cfg, r, identity), browseLogFile)
}
