// Package maintenance holds the bulk data operations behind the CLI: range
// deletion, JSON import, placeholder generation, listing and seeding.
package maintenance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dyluth/artmatrix/internal/address"
)

// Range is an inclusive integer range.
type Range struct {
	Start int
	End   int
}

// ParseRange accepts "N" or "A-B".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("empty range")
	}

	startStr, endStr, isRange := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if !isRange {
		return Range{Start: start, End: start}, nil
	}

	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if end < start {
		return Range{}, fmt.Errorf("invalid range %q: end before start", s)
	}
	return Range{Start: start, End: end}, nil
}

func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// KeyRange selects child keys under one parent row.
type KeyRange struct {
	ParentRow int
	StartCol  int
	EndCol    int
	SubRows   Range
	SubCols   Range
}

// DefaultKeyRange is the block the delete tool targets when nothing is given:
// parent row 1, columns 15 to 18, every sub-grid cell.
func DefaultKeyRange() KeyRange {
	return KeyRange{
		ParentRow: 1,
		StartCol:  15,
		EndCol:    18,
		SubRows:   Range{Start: 1, End: address.SubGridSize},
		SubCols:   Range{Start: 1, End: address.SubGridSize},
	}
}

// Keys enumerates canonical child keys, parent column outermost.
func (k KeyRange) Keys() []string {
	var keys []string
	for col := k.StartCol; col <= k.EndCol; col++ {
		parent := address.ParentKey{Row: k.ParentRow, Col: col}
		for sr := k.SubRows.Start; sr <= k.SubRows.End; sr++ {
			for sc := k.SubCols.Start; sc <= k.SubCols.End; sc++ {
				keys = append(keys, parent.Child(sr, sc).String())
			}
		}
	}
	return keys
}
