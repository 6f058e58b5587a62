package maintenance

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dyluth/artmatrix/pkg/catalog"
)

// FormatTable writes entries as a table: KEY, TITLE, AUTHOR, YEAR, IMAGE and
// the first line of the description. Returns the number of entries written.
func FormatTable(w io.Writer, entries []*catalog.Entry, collection string) int {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No entries found in collection '%s'\n", collection)
		return 0
	}

	fmt.Fprintf(w, "Entries in collection '%s':\n\n", collection)

	fmt.Fprintf(w, "%-16s %-20s %-16s %-6s %-5s %s\n",
		"KEY", "TITLE", "AUTHOR", "YEAR", "IMAGE", "DESCRIPTION")
	fmt.Fprintf(w, "%-16s %-20s %-16s %-6s %-5s %s\n",
		"----------------", "--------------------", "----------------", "------", "-----", "----------------------------------------")

	for _, e := range entries {
		fmt.Fprintf(w, "%-16s %-20s %-16s %-6s %-5s %s\n",
			truncate(e.Key, 16),
			truncate(orDash(e.Title), 20),
			truncate(orDash(e.Author), 16),
			truncate(orDash(e.Year), 6),
			formatImage(e),
			formatDescription(e.Description),
		)
	}

	noun := "entry"
	if len(entries) != 1 {
		noun = "entries"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(entries), noun)

	return len(entries)
}

// FormatJSONL writes entries as line-delimited JSON, one object per line.
func FormatJSONL(w io.Writer, entries []*catalog.Entry) error {
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes one entry as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, e *catalog.Entry) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// formatImage shows "yes" for a strict image, "raw" for a value only the
// lenient rule accepts and "-" otherwise.
func formatImage(e *catalog.Entry) string {
	switch {
	case e.HasImage(true):
		return "yes"
	case e.HasImage(false):
		return "raw"
	default:
		return "-"
	}
}

// formatDescription returns the first non-empty line, at most 40 characters.
func formatDescription(desc string) string {
	for _, line := range strings.Split(desc, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return truncate(trimmed, 40)
		}
	}
	return "-"
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
