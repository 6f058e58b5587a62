package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/dyluth/artmatrix/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the grid and detail views over HTTP",
	Long: `Serve the JSON API used by web front ends.

Endpoints:
  GET    /healthz                 store connectivity
  GET    /api/grid                top-level grid
  GET    /api/cells/{parent}      4x4 sub-grid and its resolved entries
  GET    /api/details/{key}       single entry lookup with debug info
  POST   /api/views               open a detail view {"address": "R2C5-r3c1"}
  GET    /api/views/{id}          current state of a detail view
  POST   /api/views/{id}/input    scroll intent {"delta": 120, "regionCanScroll": false}
  DELETE /api/views/{id}          close a detail view

Examples:
  # Serve on the configured address (default :8080)
  artmatrix serve

  # Serve a local SQLite catalogue on another port
  artmatrix serve --store sqlite --sqlite-path art.db --addr :9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	printer.Step("Serving %s store on %s\n", cfg.Store.Driver, addr)
	if err := server.New(store, cfg).Run(ctx, addr); err != nil {
		return printer.Error(
			"server failed",
			err.Error(),
			[]string{"Check that the listen address is free:\n  artmatrix serve --addr :9090"},
		)
	}
	printer.Success("Server stopped\n")
	return nil
}
