package address

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress_Parent(t *testing.T) {
	tests := []struct {
		raw      string
		row, col int
	}{
		{"R1C1", 1, 1},
		{"R01C01", 1, 1},
		{"R1C01", 1, 1},
		{"r2c5", 2, 5},
		{"R18C14", 18, 14},
		{"R010C3", 10, 3},
		{" R3C4 ", 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := ParseAddress(tt.raw)
			require.Equal(t, KindParent, a.Kind)
			assert.Equal(t, ParentKey{Row: tt.row, Col: tt.col}, a.Parent)
			assert.Equal(t, tt.raw, a.Raw)
		})
	}
}

func TestParseAddress_PaddingInsensitive(t *testing.T) {
	for row := 1; row <= 18; row++ {
		for col := 1; col <= 14; col++ {
			p := ParentKey{Row: row, Col: col}
			assert.Equal(t, ParseAddress(p.String()).Parent, ParseAddress(p.Padded()).Parent)
			assert.Equal(t, KindParent, ParseAddress(p.Padded()).Kind)
		}
	}
}

func TestParseAddress_ChildAllPaddingCombinations(t *testing.T) {
	for _, p := range []ParentKey{{1, 1}, {2, 5}, {12, 14}} {
		for _, slot := range Slots() {
			for _, raw := range CandidateKeys(p, slot.SubRow, slot.SubCol) {
				a := ParseAddress(raw)
				require.Equal(t, KindChild, a.Kind, raw)
				assert.Equal(t, p, a.Parent, raw)
				assert.Equal(t, slot.SubRow, a.SubRow, raw)
				assert.Equal(t, slot.SubCol, a.SubCol, raw)
			}
		}
	}

	// Explicit spellings, including mixed case
	for _, raw := range []string{"R1C1-r1c1", "R1C1-r01c01", "R01C01-r1c1", "R01C01-r01c01", "r1c1-R1C1"} {
		a := ParseAddress(raw)
		require.Equal(t, KindChild, a.Kind, raw)
		assert.Equal(t, ChildKey{Parent: ParentKey{1, 1}, SubRow: 1, SubCol: 1}, a.Child(), raw)
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"hello",
		"R1",
		"C1",
		"R0C1",
		"R1C0",
		"R1C1-",
		"R1C1-r1",
		"R1C1-r0c0",
		"R1C1-r5c1",
		"R1C1-r1c1-extra",
		"X1C1-r1c1",
		"R1C1r1c1",
		"R-1C1",
	} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			assert.Equal(t, KindInvalid, ParseAddress(raw).Kind)
		})
	}
}

func TestPad2(t *testing.T) {
	assert.Equal(t, "01", Pad2(1))
	assert.Equal(t, "09", Pad2(9))
	assert.Equal(t, "10", Pad2(10))
	assert.Equal(t, "123", Pad2(123))
}

func TestCandidateKeys(t *testing.T) {
	t.Run("single digit parent yields four spellings in priority order", func(t *testing.T) {
		keys := CandidateKeys(ParentKey{Row: 1, Col: 2}, 3, 4)
		assert.Equal(t, []string{
			"R1C2-r3c4",
			"R1C2-r03c04",
			"R01C02-r3c4",
			"R01C02-r03c04",
		}, keys)
	})

	t.Run("double digit parent collapses padded parent spellings", func(t *testing.T) {
		keys := CandidateKeys(ParentKey{Row: 12, Col: 14}, 1, 1)
		assert.Equal(t, []string{"R12C14-r1c1", "R12C14-r01c01"}, keys)
	})

	t.Run("mixed parent digits keep distinct spellings", func(t *testing.T) {
		keys := CandidateKeys(ParentKey{Row: 12, Col: 3}, 2, 2)
		assert.Equal(t, []string{
			"R12C3-r2c2",
			"R12C3-r02c02",
			"R12C03-r2c2",
			"R12C03-r02c02",
		}, keys)
	})
}

func TestSlots_RowMajor(t *testing.T) {
	slots := Slots()
	require.Len(t, slots, 16)
	assert.Equal(t, Slot{1, 1}, slots[0])
	assert.Equal(t, Slot{1, 4}, slots[3])
	assert.Equal(t, Slot{2, 1}, slots[4])
	assert.Equal(t, Slot{4, 4}, slots[15])
}

func TestKeyStrings(t *testing.T) {
	c := ParentKey{Row: 2, Col: 5}.Child(3, 1)
	assert.Equal(t, "R2C5-r3c1", c.String())
	assert.Equal(t, "r3c1", c.Suffix())
	assert.Equal(t, "R02C05", c.Parent.Padded())
}

func TestParseParent(t *testing.T) {
	p, err := ParseParent("R02C05", 18, 14)
	require.NoError(t, err)
	assert.Equal(t, ParentKey{Row: 2, Col: 5}, p)

	_, err = ParseParent("R19C1", 18, 14)
	var invalid *InvalidAddressError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "18x14")

	_, err = ParseParent("R1C1-r1c1", 18, 14)
	require.ErrorAs(t, err, &invalid)
}
