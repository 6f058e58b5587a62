package maintenance

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dyluth/artmatrix/internal/address"
)

// Bounds is the block of parent cells GeneratePlaceholders fills.
type Bounds struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// DefaultBounds covers rows 2 to 18 and columns 1 to 14. Row 1 is left for
// hand-curated data.
func DefaultBounds() Bounds {
	return Bounds{RowStart: 2, RowEnd: 18, ColStart: 1, ColEnd: 14}
}

// Placeholder is a generated test record in the import file format.
type Placeholder struct {
	ID          string   `json:"id"`
	ParentRow   int      `json:"parentRow"`
	ParentCol   int      `json:"parentCol"`
	ModalRow    int      `json:"modalRow"`
	ModalCol    int      `json:"modalCol"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Year        string   `json:"year"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

// GeneratePlaceholders returns a record for every child key inside b whose id
// is not in existing, in row-major order.
func GeneratePlaceholders(existing map[string]bool, b Bounds) []Placeholder {
	var out []Placeholder
	for pr := b.RowStart; pr <= b.RowEnd; pr++ {
		for pc := b.ColStart; pc <= b.ColEnd; pc++ {
			parent := address.ParentKey{Row: pr, Col: pc}
			for _, slot := range address.Slots() {
				id := parent.Child(slot.SubRow, slot.SubCol).String()
				if existing[id] {
					continue
				}
				out = append(out, Placeholder{
					ID:          id,
					ParentRow:   pr,
					ParentCol:   pc,
					ModalRow:    slot.SubRow,
					ModalCol:    slot.SubCol,
					Title:       "Test Work",
					Author:      "Test Artist",
					Year:        "2025",
					Description: "This is test data\n",
					ImageURL:    "",
					Tags:        []string{"oil"},
				})
			}
		}
	}
	return out
}

// GenerateFile appends placeholders to the JSON array stored at path, leaving
// existing records untouched. It returns the number of records added; the file
// is not rewritten when that is zero.
func GenerateFile(path string, b Bounds) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("%s is not a JSON array: %w", path, err)
	}

	existing := make(map[string]bool, len(records))
	for _, raw := range records {
		var rec struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &rec); err == nil && rec.ID != "" {
			existing[rec.ID] = true
		}
	}

	additions := GeneratePlaceholders(existing, b)
	if len(additions) == 0 {
		return 0, nil
	}

	for _, p := range additions {
		raw, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal placeholder %s: %w", p.ID, err)
		}
		records = append(records, raw)
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return len(additions), nil
}
