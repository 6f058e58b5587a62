// Package address encodes and decodes catalog cell identifiers.
//
// A parent cell is written R<row>C<col> ("R2C5"). A child cell appends a
// sub-grid position: R<row>C<col>-r<subRow>c<subCol> ("R2C5-r3c1"). Historical
// data also zero-pads any of the four numbers to two digits, so decoding is
// padding-insensitive and CandidateKeys enumerates every spelling a stored
// document may use.
package address

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SubGridSize is the edge length of the sub-grid under each parent cell.
const SubGridSize = 4

// Kind classifies a parsed address.
type Kind int

const (
	// KindInvalid means the string matched no key grammar
	KindInvalid Kind = iota

	// KindParent is a top-level grid cell
	KindParent

	// KindChild is a sub-cell of a parent
	KindChild
)

func (k Kind) String() string {
	switch k {
	case KindParent:
		return "parent"
	case KindChild:
		return "child"
	default:
		return "invalid"
	}
}

var (
	parentPattern = regexp.MustCompile(`(?i)^R0?(\d+)C0?(\d+)$`)
	childPattern  = regexp.MustCompile(`(?i)^r0?(\d+)c0?(\d+)$`)
)

// ParentKey addresses a top-level grid cell. Rows and columns are 1-based.
type ParentKey struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String renders the canonical unpadded form, e.g. "R2C5".
func (p ParentKey) String() string {
	return fmt.Sprintf("R%dC%d", p.Row, p.Col)
}

// Padded renders the zero-padded form, e.g. "R02C05".
func (p ParentKey) Padded() string {
	return "R" + Pad2(p.Row) + "C" + Pad2(p.Col)
}

// InBounds reports whether the cell lies inside a rows x cols grid.
func (p ParentKey) InBounds(rows, cols int) bool {
	return p.Row >= 1 && p.Row <= rows && p.Col >= 1 && p.Col <= cols
}

// Child returns the child key at (subRow, subCol) under p.
func (p ParentKey) Child(subRow, subCol int) ChildKey {
	return ChildKey{Parent: p, SubRow: subRow, SubCol: subCol}
}

// ChildKey addresses one of the 16 sub-cells of a parent.
type ChildKey struct {
	Parent ParentKey `json:"parent"`
	SubRow int       `json:"subRow"`
	SubCol int       `json:"subCol"`
}

// String renders the canonical unpadded form, e.g. "R2C5-r3c1".
// Maintenance tools build document keys with this method.
func (c ChildKey) String() string {
	return fmt.Sprintf("%s-r%dc%d", c.Parent, c.SubRow, c.SubCol)
}

// Suffix renders the sub-cell part only, e.g. "r3c1".
func (c ChildKey) Suffix() string {
	return fmt.Sprintf("r%dc%d", c.SubRow, c.SubCol)
}

// Address is the result of parsing a raw identifier.
// Parent is set for both parent and child addresses; SubRow/SubCol only for children.
type Address struct {
	Raw    string
	Kind   Kind
	Parent ParentKey
	SubRow int
	SubCol int
}

// Child returns the child key of a child address.
// The result is meaningless for other kinds.
func (a Address) Child() ChildKey {
	return a.Parent.Child(a.SubRow, a.SubCol)
}

// ParseAddress classifies a raw identifier.
//
// Matching is case-insensitive and padding-insensitive. Row and column must be
// at least 1 and sub-cell indices must lie in [1, SubGridSize]; anything else
// is KindInvalid. An invalid address is still a usable document key: callers
// look it up verbatim instead of resolving siblings.
func ParseAddress(raw string) Address {
	s := strings.TrimSpace(raw)
	invalid := Address{Raw: raw, Kind: KindInvalid}

	head, tail, hasTail := strings.Cut(s, "-")

	parent, ok := parseParent(head)
	if !ok {
		return invalid
	}

	if !hasTail {
		return Address{Raw: raw, Kind: KindParent, Parent: parent}
	}

	m := childPattern.FindStringSubmatch(tail)
	if m == nil {
		return invalid
	}
	subRow, err1 := strconv.Atoi(m[1])
	subCol, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || !inSubGrid(subRow) || !inSubGrid(subCol) {
		return invalid
	}

	return Address{Raw: raw, Kind: KindChild, Parent: parent, SubRow: subRow, SubCol: subCol}
}

func parseParent(s string) (ParentKey, bool) {
	m := parentPattern.FindStringSubmatch(s)
	if m == nil {
		return ParentKey{}, false
	}
	row, err1 := strconv.Atoi(m[1])
	col, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || row < 1 || col < 1 {
		return ParentKey{}, false
	}
	return ParentKey{Row: row, Col: col}, true
}

func inSubGrid(n int) bool {
	return n >= 1 && n <= SubGridSize
}

// Pad2 zero-pads n to two digits. Values of 10 and above are left as they are.
func Pad2(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// spelling describes one historical way of writing a child key.
type spelling struct {
	padParent bool
	padSub    bool
}

// spellings is the fixed probe order: the canonical unpadded form first, the
// fully padded form last.
var spellings = []spelling{
	{padParent: false, padSub: false},
	{padParent: false, padSub: true},
	{padParent: true, padSub: false},
	{padParent: true, padSub: true},
}

// CandidateKeys returns every spelling a stored document for the given child
// may use, de-duplicated, in probe priority order.
func CandidateKeys(parent ParentKey, subRow, subCol int) []string {
	keys := make([]string, 0, len(spellings))
	seen := make(map[string]bool, len(spellings))

	for _, sp := range spellings {
		p := parent.String()
		if sp.padParent {
			p = parent.Padded()
		}
		sr, sc := strconv.Itoa(subRow), strconv.Itoa(subCol)
		if sp.padSub {
			sr, sc = Pad2(subRow), Pad2(subCol)
		}

		key := p + "-r" + sr + "c" + sc
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	return keys
}

// Slot is one (subRow, subCol) position in the sub-grid.
type Slot struct {
	SubRow int
	SubCol int
}

// Slots returns all sub-grid positions in row-major order.
func Slots() []Slot {
	slots := make([]Slot, 0, SubGridSize*SubGridSize)
	for r := 1; r <= SubGridSize; r++ {
		for c := 1; c <= SubGridSize; c++ {
			slots = append(slots, Slot{SubRow: r, SubCol: c})
		}
	}
	return slots
}

// InvalidAddressError reports a string that is not a usable parent address.
type InvalidAddressError struct {
	Raw    string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address '%s': %s", e.Raw, e.Reason)
}

// ParseParent parses a strict parent address and checks it against the grid bounds.
// Child addresses are rejected; use ParseAddress when either kind is acceptable.
func ParseParent(raw string, rows, cols int) (ParentKey, error) {
	a := ParseAddress(raw)
	if a.Kind != KindParent {
		return ParentKey{}, &InvalidAddressError{Raw: raw, Reason: "expected R<row>C<col>"}
	}
	if !a.Parent.InBounds(rows, cols) {
		return ParentKey{}, &InvalidAddressError{
			Raw:    raw,
			Reason: fmt.Sprintf("outside the %dx%d grid", rows, cols),
		}
	}
	return a.Parent, nil
}
