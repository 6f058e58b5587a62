package maintenance

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dyluth/artmatrix/internal/filter"
	"github.com/dyluth/artmatrix/pkg/catalog"
)

// OutputFormat specifies how to format the entry list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated descriptions
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete entries as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Lister is the part of a store ListEntries needs.
type Lister interface {
	catalog.Getter
	ListKeys(ctx context.Context, pattern string) ([]string, error)
}

// ListEntries writes every entry in the collection that matches filters.
// The key glob, when set, is pushed down to the store. Entries that fail to
// load are skipped with a warning to stderr. Output is sorted by key.
func ListEntries(ctx context.Context, store Lister, collection string, format OutputFormat, filters *filter.Criteria, w io.Writer) error {
	pattern := "*"
	if filters != nil && filters.KeyGlob != "" {
		pattern = filters.KeyGlob
	}

	keys, err := store.ListKeys(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	var entries []*catalog.Entry
	for _, key := range keys {
		entry, err := store.GetEntry(ctx, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Skipping unreadable entry: key=%s (error: %v)\n", key, err)
			continue
		}
		if filters != nil && !filters.Matches(entry) {
			continue
		}
		entries = append(entries, entry)
	}

	switch format {
	case OutputFormatDefault, "":
		FormatTable(w, entries, collection)
	case OutputFormatJSONL:
		if err := FormatJSONL(w, entries); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
