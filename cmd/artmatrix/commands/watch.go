package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/artmatrix/internal/filter"
	"github.com/dyluth/artmatrix/internal/maintenance"
	"github.com/dyluth/artmatrix/internal/printer"
	"github.com/dyluth/artmatrix/internal/watch"
	"github.com/dyluth/artmatrix/pkg/catalog"
	"github.com/spf13/cobra"
)

var (
	watchOutputFormat string
	watchKeyGlob      string
	watchParent       string
	watchWaitFor      string
	watchTimeout      time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow entry changes as they happen",
	Long: `Stream entry writes and deletes from the store.

Streaming needs the redis driver. With --wait-for the command instead polls
until a document exists under that exact key, which works with any driver.

Output Formats:
  default - Human-readable lines with emojis
  jsonl   - Line-delimited JSON events

Examples:
  # Follow every change
  artmatrix watch

  # Follow one sub-grid as JSON
  artmatrix watch --parent R2C5 -o jsonl

  # Block until an import has written a key
  artmatrix watch --wait-for R2C5-r3c1 --timeout 1m`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", watch.FormatDefault, "Output format: default or jsonl")
	watchCmd.Flags().StringVar(&watchKeyGlob, "key", "", "Filter by document key (glob pattern)")
	watchCmd.Flags().StringVar(&watchParent, "parent", "", "Filter by parent cell")
	watchCmd.Flags().StringVar(&watchWaitFor, "wait-for", "", "Poll until this key exists, then print it")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 30*time.Second, "Give up waiting after this long (with --wait-for)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	switch watchOutputFormat {
	case watch.FormatDefault, watch.FormatJSONL:
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if watchWaitFor != "" {
		entry, err := watch.PollForEntry(ctx, store, watchWaitFor, watchTimeout)
		if err != nil {
			return printer.Error(
				fmt.Sprintf("entry '%s' did not appear", watchWaitFor),
				err.Error(),
				[]string{"Increase the wait:\n  artmatrix watch --wait-for " + watchWaitFor + " --timeout 5m"},
			)
		}
		return maintenance.FormatSingleJSON(os.Stdout, entry)
	}

	client, ok := store.(*catalog.Client)
	if !ok {
		return printer.Error(
			"streaming needs the redis store",
			fmt.Sprintf("The %s store does not publish change events.", cfg.Store.Driver),
			[]string{
				"Use the redis driver:\n  artmatrix watch --store redis",
				"Or poll for one key:\n  artmatrix watch --wait-for KEY",
			},
		)
	}

	sub, err := client.SubscribeEntryEvents(ctx)
	if err != nil {
		return printer.Error("failed to subscribe to entry events", err.Error(), nil)
	}
	defer sub.Close()

	criteria := &filter.Criteria{KeyGlob: watchKeyGlob, ParentKey: watchParent, Strict: cfg.StrictImages()}
	if watchOutputFormat == watch.FormatDefault {
		printer.Step("Watching collection %s (Ctrl+C to stop)\n", cfg.Store.Collection)
	}
	return watch.Stream(ctx, sub, criteria, watchOutputFormat, os.Stdout)
}
