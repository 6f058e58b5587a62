package maintenance

import (
	"context"
	"fmt"

	"github.com/dyluth/artmatrix/pkg/catalog"
)

// TestEntryKey is the fixed key of the connectivity test document. Its sub
// indices are out of range on purpose so it never shows up in a sibling set.
const TestEntryKey = "R1C1-r0c0"

// SeedTestEntry writes the test document and returns it.
func SeedTestEntry(ctx context.Context, store Writer) (*catalog.Entry, error) {
	entry := &catalog.Entry{
		Key:         TestEntryKey,
		Title:       "Test Work",
		Author:      "Test Artist",
		Year:        "2025",
		Description: "This is test data (written by the seed command)",
	}
	if err := store.SetEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write test entry: %w", err)
	}
	return entry, nil
}
