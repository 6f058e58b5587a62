package filter

import (
	"path/filepath"
	"strings"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/pkg/catalog"
)

// Criteria defines filtering criteria for entries.
// All filters are ANDed together - an entry must match ALL criteria to pass.
type Criteria struct {
	KeyGlob      string // Glob pattern for the document key, empty = no filter
	ParentKey    string // Only children of this parent (any spelling), empty = no filter
	RequireImage bool   // Drop entries whose image is absent
	Strict       bool   // Image rule used by RequireImage
}

// Matches returns true if the entry matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(e *catalog.Entry) bool {
	if c.KeyGlob != "" {
		matched, err := filepath.Match(c.KeyGlob, e.Key)
		if err != nil || !matched {
			return false
		}
	}

	// Parent filtering compares parsed keys so R01C01 matches R1C1
	if c.ParentKey != "" {
		want := address.ParseAddress(c.ParentKey)
		got := address.ParseAddress(e.Key)
		if got.Kind != address.KindChild {
			return false
		}
		if want.Kind == address.KindInvalid {
			if !strings.EqualFold(got.Parent.String(), c.ParentKey) {
				return false
			}
		} else if got.Parent != want.Parent {
			return false
		}
	}

	if c.RequireImage && !e.HasImage(c.Strict) {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.KeyGlob != "" ||
		c.ParentKey != "" ||
		c.RequireImage
}
