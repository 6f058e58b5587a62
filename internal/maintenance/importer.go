package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/pkg/catalog"
)

// Writer stores documents.
type Writer interface {
	SetEntry(ctx context.Context, e *catalog.Entry) error
}

// flexString decodes a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) int() int {
	n, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return 0
	}
	return n
}

// importRecord is one document in an import file.
type importRecord struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	ParentRow   flexString `json:"parentRow"`
	ParentCol   flexString `json:"parentCol"`
	ModalRow    flexString `json:"modalRow"`
	ModalCol    flexString `json:"modalCol"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Year        flexString `json:"year"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl"`
	Tags        []string   `json:"tags"`
}

// key picks the document key: id, then slug, then the child key built from
// the grid coordinates. Empty when none is usable.
func (r *importRecord) key() string {
	if r.ID != "" {
		return r.ID
	}
	if r.Slug != "" {
		return r.Slug
	}
	pr, pc, mr, mc := r.ParentRow.int(), r.ParentCol.int(), r.ModalRow.int(), r.ModalCol.int()
	if pr < 1 || pc < 1 || mr < 1 || mc < 1 {
		return ""
	}
	return address.ParentKey{Row: pr, Col: pc}.Child(mr, mc).String()
}

func (r *importRecord) entry(key string) *catalog.Entry {
	return &catalog.Entry{
		Key:         key,
		Title:       r.Title,
		Author:      r.Author,
		Year:        string(r.Year),
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
	}
}

// ImportReport summarises an ImportFile run.
type ImportReport struct {
	Written int
	Skipped int
	Failed  int
}

// ImportFile reads a JSON document set from r and writes every record to
// store. The file is either an array of records or an object mapping key to
// record. Records without a usable key are skipped; write failures are
// counted and do not stop the import.
func ImportFile(ctx context.Context, store Writer, r io.Reader, w io.Writer) (ImportReport, error) {
	var report ImportReport

	data, err := io.ReadAll(r)
	if err != nil {
		return report, fmt.Errorf("failed to read import file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return report, fmt.Errorf("import file is empty")
	}

	type keyed struct {
		key string
		rec importRecord
	}
	var records []keyed

	switch trimmed[0] {
	case '[':
		var list []importRecord
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return report, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		for i := range list {
			records = append(records, keyed{key: list[i].key(), rec: list[i]})
		}
	case '{':
		var byKey map[string]importRecord
		if err := json.Unmarshal(trimmed, &byKey); err != nil {
			return report, fmt.Errorf("failed to parse JSON object: %w", err)
		}
		for k, rec := range byKey {
			records = append(records, keyed{key: k, rec: rec})
		}
		// Map iteration order is random; keep output stable
		sort.Slice(records, func(i, j int) bool { return records[i].key < records[j].key })
	default:
		return report, fmt.Errorf("import file must hold a JSON array or object")
	}

	for i, kr := range records {
		if kr.key == "" {
			fmt.Fprintf(w, "⚠️  skipped record %d: no id, slug or grid coordinates\n", i)
			report.Skipped++
			continue
		}

		entry := kr.rec.entry(kr.key)
		if err := entry.Validate(); err != nil {
			fmt.Fprintf(w, "⚠️  skipped %s: %v\n", kr.key, err)
			report.Skipped++
			continue
		}

		if err := store.SetEntry(ctx, entry); err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", kr.key, err)
			report.Failed++
			continue
		}
		fmt.Fprintf(w, "wrote %s\n", kr.key)
		report.Written++
	}

	fmt.Fprintf(w, "Import complete: %d written, %d skipped, %d failed\n", report.Written, report.Skipped, report.Failed)
	return report, nil
}
