package commands

import (
	"fmt"

	"github.com/dyluth/artmatrix/internal/maintenance"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/spf13/cobra"
)

var (
	generateRows string
	generateCols string
)

var generateCmd = &cobra.Command{
	Use:   "generate FILE",
	Short: "Add placeholder records to an import file",
	Long: `Append a placeholder record for every child cell in a block of parent
cells that FILE does not already contain. FILE must hold a JSON array in the
import format; existing records are left untouched.

Examples:
  # Fill rows 2-18, columns 1-14
  artmatrix generate works.json

  # Fill a smaller block, then load it
  artmatrix generate works.json --rows 2-3 --cols 1-2
  artmatrix import works.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	def := maintenance.DefaultBounds()
	generateCmd.Flags().StringVar(&generateRows, "rows", maintenance.Range{Start: def.RowStart, End: def.RowEnd}.String(), "Parent rows, N or N-M")
	generateCmd.Flags().StringVar(&generateCols, "cols", maintenance.Range{Start: def.ColStart, End: def.ColEnd}.String(), "Parent columns, N or N-M")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rows, err := maintenance.ParseRange(generateRows)
	if err == nil && rows.Start < 1 {
		err = fmt.Errorf("rows start at 1")
	}
	if err != nil {
		return printer.Error("invalid --rows", err.Error(), nil)
	}
	cols, err := maintenance.ParseRange(generateCols)
	if err == nil && cols.Start < 1 {
		err = fmt.Errorf("columns start at 1")
	}
	if err != nil {
		return printer.Error("invalid --cols", err.Error(), nil)
	}

	bounds := maintenance.Bounds{RowStart: rows.Start, RowEnd: rows.End, ColStart: cols.Start, ColEnd: cols.End}
	added, err := maintenance.GenerateFile(args[0], bounds)
	if err != nil {
		return printer.Error(
			"failed to generate placeholders",
			err.Error(),
			[]string{"Create the file with an empty array first:\n  echo '[]' > " + args[0]},
		)
	}

	if added == 0 {
		printer.Info("No placeholders needed, %s already covers rows %s and columns %s\n", args[0], rows, cols)
		return nil
	}
	printer.Success("Added %d placeholder records to %s\n", added, args[0])
	return nil
}
