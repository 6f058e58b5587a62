package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dyluth/artmatrix/internal/filter"
	"github.com/dyluth/artmatrix/internal/maintenance"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/spf13/cobra"
)

var (
	listOutputFormat string
	listKeyGlob      string
	listParent       string
	listWithImage    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogue entries with filtering",
	Long: `List entries in the configured collection.

Output Formats:
  default - Human-readable table with key, title, author, year and image
  jsonl   - Line-delimited JSON, one entry per line

Filters:
  --key        - Glob pattern on the document key ("R2C5-*")
  --parent     - Only children of this parent cell, any spelling ("R02C05")
  --with-image - Only entries whose image would be shown

Examples:
  # Everything, as a table
  artmatrix list

  # One sub-grid, including legacy padded keys
  artmatrix list --parent R2C5

  # Entries with images as JSONL for jq
  artmatrix list --with-image -o jsonl | jq .key`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	listCmd.Flags().StringVar(&listKeyGlob, "key", "", "Filter by document key (glob pattern)")
	listCmd.Flags().StringVar(&listParent, "parent", "", "Filter by parent cell")
	listCmd.Flags().BoolVar(&listWithImage, "with-image", false, "Only entries with a displayable image")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var format maintenance.OutputFormat
	switch listOutputFormat {
	case "default":
		format = maintenance.OutputFormatDefault
	case "jsonl":
		format = maintenance.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", listOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	criteria := &filter.Criteria{
		KeyGlob:      listKeyGlob,
		ParentKey:    listParent,
		RequireImage: listWithImage,
		Strict:       cfg.StrictImages(),
	}

	if err := maintenance.ListEntries(ctx, store, cfg.Store.Collection, format, criteria, os.Stdout); err != nil {
		return printer.Error(
			"failed to list entries",
			err.Error(),
			nil,
		)
	}
	return nil
}
