package maintenance

import (
	"context"
	"fmt"
	"io"
)

// Deleter removes documents by key.
type Deleter interface {
	DeleteEntry(ctx context.Context, key string) error
}

// DeleteReport summarises a DeleteKeys run.
type DeleteReport struct {
	Targets int
	Deleted int
	Failed  int
	DryRun  bool
}

// DeleteKeys removes each key in turn, writing progress to w. A failed delete
// is reported and counted but never stops the run. With dryRun set the keys
// are only listed.
func DeleteKeys(ctx context.Context, store Deleter, keys []string, dryRun bool, w io.Writer) DeleteReport {
	report := DeleteReport{Targets: len(keys), DryRun: dryRun}
	fmt.Fprintf(w, "Targets: %d\n", len(keys))

	if dryRun {
		fmt.Fprintln(w, "--- DRY RUN: keys that would be deleted ---")
		for _, k := range keys {
			fmt.Fprintln(w, k)
		}
		return report
	}

	for _, k := range keys {
		if err := store.DeleteEntry(ctx, k); err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", k, err)
			report.Failed++
			continue
		}
		fmt.Fprintf(w, "deleted: %s\n", k)
		report.Deleted++
	}

	fmt.Fprintf(w, "Done: %d deleted, %d failed\n", report.Deleted, report.Failed)
	return report
}
