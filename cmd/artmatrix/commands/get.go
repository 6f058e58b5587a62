package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/maintenance"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/dyluth/artmatrix/internal/resolver"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Show one entry as JSON",
	Long: `Look up a single entry and print it as pretty-printed JSON.

Child keys are tried under every stored spelling, so R1C1-r1c1 also finds
R01C01-r01c01. Any other key is looked up exactly.

Examples:
  artmatrix get R2C5-r3c1
  artmatrix get R02C05-r03c01 | jq .title`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	key := args[0]
	r := resolver.New(store, resolver.WithStrictImages(cfg.StrictImages()))
	err = maintenance.GetEntry(ctx, r, key, os.Stdout)

	var notFound *maintenance.EntryNotFoundError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &notFound):
		return printer.ErrorWithContext(
			fmt.Sprintf("entry '%s' not found", key),
			"No document exists under any spelling of this key.",
			map[string]string{
				"collection": cfg.Store.Collection,
				"tried":      strings.Join(notFound.Tried, ", "),
			},
			[]string{
				fmt.Sprintf("List the entries under its parent:\n  artmatrix list --parent %s", parentOf(key)),
				"List everything:\n  artmatrix list",
			},
		)
	default:
		return printer.Error(
			"failed to fetch entry",
			err.Error(),
			nil,
		)
	}
}

// parentOf returns the parent cell of a child address, or the key unchanged.
func parentOf(key string) string {
	a := address.ParseAddress(key)
	if a.Kind == address.KindInvalid {
		return key
	}
	return a.Parent.String()
}
