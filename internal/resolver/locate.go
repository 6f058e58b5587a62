package resolver

import (
	"strings"

	"github.com/dyluth/artmatrix/internal/address"
)

// LocateIndex finds where a requested child sits in a sibling set.
//
// An exact key match wins. Failing that, the first entry with the same
// (subRow, subCol) is used, which tolerates the parent being spelled
// differently (padded vs unpadded). If neither exists the first entry is used.
func LocateIndex(set *SiblingSet, requested string) int {
	if set.Len() == 0 {
		return 0
	}

	for i, e := range set.Entries {
		if e.Key == requested {
			return i
		}
	}

	want := address.ParseAddress(requested)
	if want.Kind != address.KindChild {
		return 0
	}

	for i, e := range set.Entries {
		got := address.ParseAddress(e.Key)
		if got.Kind == address.KindChild {
			if got.SubRow == want.SubRow && got.SubCol == want.SubCol {
				return i
			}
			continue
		}
		// Keys outside the grammar can still end in a recognisable suffix
		if strings.HasSuffix(strings.ToLower(e.Key), "-"+want.Child().Suffix()) {
			return i
		}
	}

	return 0
}
