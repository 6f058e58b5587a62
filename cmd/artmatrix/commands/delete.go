package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/maintenance"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/spf13/cobra"
)

var (
	deleteDryRun    bool
	deleteParentRow int
	deleteStartCol  int
	deleteEndCol    int
	deleteSubRows   string
	deleteSubCols   string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a block of child entries",
	Long: `Delete every child entry in a block of parent cells on one grid row.

Keys are built in the canonical unpadded form (R1C15-r1c1). Failed deletes
are reported and counted but never stop the run.

Examples:
  # See what the default block (row 1, columns 15-18) would remove
  artmatrix delete --dry

  # Remove the first two sub-rows of R3C1..R3C4
  artmatrix delete --parent-row 3 --start-col 1 --end-col 4 --sub-rows 1-2`,
	RunE: runDelete,
}

func init() {
	def := maintenance.DefaultKeyRange()
	deleteCmd.Flags().BoolVar(&deleteDryRun, "dry", false, "List the keys without deleting")
	deleteCmd.Flags().IntVar(&deleteParentRow, "parent-row", def.ParentRow, "Parent grid row")
	deleteCmd.Flags().IntVar(&deleteStartCol, "start-col", def.StartCol, "First parent column")
	deleteCmd.Flags().IntVar(&deleteEndCol, "end-col", def.EndCol, "Last parent column")
	deleteCmd.Flags().StringVar(&deleteSubRows, "sub-rows", def.SubRows.String(), "Sub-grid rows, N or N-M")
	deleteCmd.Flags().StringVar(&deleteSubCols, "sub-cols", def.SubCols.String(), "Sub-grid columns, N or N-M")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	keyRange, err := deleteKeyRange()
	if err != nil {
		return printer.Error(
			"invalid key range",
			err.Error(),
			[]string{"Ranges are a single number or START-END, e.g. --sub-rows 1-4"},
		)
	}

	_, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	report := maintenance.DeleteKeys(ctx, store, keyRange.Keys(), deleteDryRun, os.Stdout)

	switch {
	case report.DryRun:
		printer.Info("\nDry run: %d keys would be deleted\n", report.Targets)
	case report.Failed > 0:
		printer.Warning("Deleted %d of %d keys, %d failed\n", report.Deleted, report.Targets, report.Failed)
	default:
		printer.Success("Deleted %d keys\n", report.Deleted)
	}
	return nil
}

func deleteKeyRange() (maintenance.KeyRange, error) {
	subRows, err := maintenance.ParseRange(deleteSubRows)
	if err != nil {
		return maintenance.KeyRange{}, fmt.Errorf("--sub-rows: %w", err)
	}
	subCols, err := maintenance.ParseRange(deleteSubCols)
	if err != nil {
		return maintenance.KeyRange{}, fmt.Errorf("--sub-cols: %w", err)
	}
	for name, r := range map[string]maintenance.Range{"--sub-rows": subRows, "--sub-cols": subCols} {
		if r.Start < 1 || r.End > address.SubGridSize {
			return maintenance.KeyRange{}, fmt.Errorf("%s must lie within 1-%d, got %s", name, address.SubGridSize, r)
		}
	}
	if deleteParentRow < 1 {
		return maintenance.KeyRange{}, fmt.Errorf("--parent-row must be >= 1, got %d", deleteParentRow)
	}
	if deleteStartCol < 1 || deleteEndCol < deleteStartCol {
		return maintenance.KeyRange{}, fmt.Errorf("--start-col and --end-col must satisfy 1 <= start <= end, got %d-%d", deleteStartCol, deleteEndCol)
	}

	return maintenance.KeyRange{
		ParentRow: deleteParentRow,
		StartCol:  deleteStartCol,
		EndCol:    deleteEndCol,
		SubRows:   subRows,
		SubCols:   subCols,
	}, nil
}
