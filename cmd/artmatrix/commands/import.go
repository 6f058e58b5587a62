package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dyluth/artmatrix/internal/maintenance"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import entries from a JSON file",
	Long: `Write every record in a JSON file to the store.

The file is either an array of records or an object mapping key to record.
A record's key is its "id", else its "slug", else the address built from
parentRow/parentCol/modalRow/modalCol. Existing documents are replaced.

Examples:
  artmatrix import works.json
  artmatrix import --store sqlite --sqlite-path art.db works.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return printer.Error(
			"cannot open import file",
			err.Error(),
			nil,
		)
	}
	defer f.Close()

	_, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	printer.Step("Importing %s\n", path)
	report, err := maintenance.ImportFile(ctx, store, f, os.Stdout)
	if err != nil {
		return printer.Error(
			"import failed",
			err.Error(),
			[]string{"The file must hold a JSON array or object of records"},
		)
	}

	summary := fmt.Sprintf("Imported %d entries (%d skipped, %d failed)\n", report.Written, report.Skipped, report.Failed)
	if report.Failed > 0 || report.Skipped > 0 {
		printer.Warning("%s", summary)
	} else {
		printer.Success("%s", summary)
	}
	return nil
}
