package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/artmatrix/internal/filter"
	"github.com/dyluth/artmatrix/pkg/catalog"
)

// Output formats for Stream
const (
	FormatDefault = "default"
	FormatJSONL   = "jsonl"
)

// PollForEntry polls until a document exists under key.
// Returns the entry or an error if timeout occurs.
// Polls every 200ms for the specified timeout duration.
func PollForEntry(ctx context.Context, store catalog.Getter, key string, timeout time.Duration) (*catalog.Entry, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		entry, err := store.GetEntry(ctx, key)
		if err == nil {
			return entry, nil
		}
		if !catalog.IsNotFound(err) {
			return nil, fmt.Errorf("failed to query for entry: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for entry %s after %v", key, timeout)
		case <-ticker.C:
		}
	}
}

// EventSource delivers entry change events. *catalog.Subscription implements it.
type EventSource interface {
	Events() <-chan *catalog.Event
	Errors() <-chan error
}

// Stream writes events from src to w until ctx is cancelled or the source
// closes. Delete events carry no entry, so criteria other than the key glob
// and parent are only applied to set events. Subscription errors are written
// inline and do not stop the stream.
func Stream(ctx context.Context, src EventSource, criteria *filter.Criteria, format string, w io.Writer) error {
	events := src.Events()
	errs := src.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !matches(criteria, ev) {
				continue
			}
			if err := writeEvent(w, ev, format); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(w, "⚠️  %v\n", err)
		}
	}
}

func matches(criteria *filter.Criteria, ev *catalog.Event) bool {
	if criteria == nil || !criteria.HasFilters() {
		return true
	}
	if ev.Entry != nil {
		return criteria.Matches(ev.Entry)
	}
	keyOnly := *criteria
	keyOnly.RequireImage = false
	return keyOnly.Matches(&catalog.Entry{Key: ev.Key})
}

func writeEvent(w io.Writer, ev *catalog.Event, format string) error {
	switch format {
	case FormatJSONL:
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
		return nil
	case FormatDefault, "":
		_, err := fmt.Fprintln(w, FormatEvent(ev))
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatEvent renders one event as a human-readable line.
func FormatEvent(ev *catalog.Event) string {
	switch ev.Op {
	case catalog.EventOpSet:
		title := "Untitled"
		if ev.Entry != nil && ev.Entry.Title != "" {
			title = ev.Entry.Title
		}
		return fmt.Sprintf("✏️  Entry Set: %s (%s)", ev.Key, title)
	case catalog.EventOpDelete:
		return fmt.Sprintf("🗑️  Entry Deleted: %s", ev.Key)
	default:
		return fmt.Sprintf("❓ Unknown Event %q: %s", ev.Op, ev.Key)
	}
}
