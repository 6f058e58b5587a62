package maintenance

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/artmatrix/internal/resolver"
)

// GetEntry looks up one document and writes it as pretty-printed JSON.
// Child keys are resolved through every historical spelling, so "R1C1-r1c1"
// finds a document stored as "R01C01-r01c01".
// Returns EntryNotFoundError when nothing exists under any spelling.
func GetEntry(ctx context.Context, r *resolver.Resolver, key string, w io.Writer) error {
	entry, lookup := r.ResolveSingle(ctx, key)
	if entry == nil {
		if lookup.Error != "" {
			return fmt.Errorf("failed to fetch entry: %s", lookup.Error)
		}
		return &EntryNotFoundError{Key: key, Tried: lookup.Tried}
	}

	if err := FormatSingleJSON(w, entry); err != nil {
		return fmt.Errorf("failed to format entry: %w", err)
	}
	return nil
}

// EntryNotFoundError represents a specific "entry not found" error.
// This allows callers to distinguish not-found errors from other failures.
type EntryNotFoundError struct {
	Key   string
	Tried []string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry '%s' not found", e.Key)
}

// IsNotFound returns true if the error is an EntryNotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*EntryNotFoundError)
	return ok
}
