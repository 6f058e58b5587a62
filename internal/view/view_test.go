package view

import (
	"testing"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/session"
	"github.com/dyluth/artmatrix/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	g := NewGrid(18, 14)

	require.Len(t, g.Cells, 18)
	require.Len(t, g.Cells[0], 14)
	assert.Equal(t, "C1", g.ColumnHeaders[0])
	assert.Equal(t, "C14", g.ColumnHeaders[13])
	assert.Equal(t, "R18", g.RowHeaders[17])

	cell := g.Cells[2][4]
	assert.Equal(t, "R3C5", cell.Key)
	assert.Equal(t, "(3,5)", cell.Label)
}

func TestNewSubGrid(t *testing.T) {
	sg := NewSubGrid(address.ParentKey{Row: 2, Col: 5})

	assert.Equal(t, "R2C5", sg.Parent)
	require.Len(t, sg.Cells, 4)
	for _, row := range sg.Cells {
		require.Len(t, row, 4)
	}
	assert.Equal(t, "R2C5-r1c1", sg.Cells[0][0].Key)
	assert.Equal(t, "R2C5-r3c1", sg.Cells[2][0].Key)
	assert.Equal(t, "3,1", sg.Cells[2][0].Label)
}

func TestNewDetail_Ready(t *testing.T) {
	snap := session.Snapshot{
		Address: "R2C5-r3c1",
		State:   session.StateReady,
		Entry:   &catalog.Entry{Key: "R2C5-r3c1", ImageURL: "https://x/3.png", Year: "1999"},
		Index:   2,
		Total:   5,
	}

	d := NewDetail(snap, true)

	assert.Equal(t, "ready", d.State)
	assert.Equal(t, DefaultTitle, d.Title)
	assert.Equal(t, DefaultAuthor, d.Author)
	assert.Equal(t, DefaultDescription, d.Description)
	assert.Equal(t, "1999", d.Year)
	assert.Equal(t, "https://x/3.png", d.ImageURL)
	assert.Equal(t, "3/5", d.Position)
	assert.Equal(t, 0.0, d.OverlayOpacity)
	assert.Nil(t, d.Debug)
}

func TestNewDetail_HidesAbsentImage(t *testing.T) {
	snap := session.Snapshot{
		State: session.StateReady,
		Entry: &catalog.Entry{Key: "legacy", Title: "T", ImageURL: "no_URL"},
		Total: 1,
	}

	d := NewDetail(snap, true)

	assert.Equal(t, "T", d.Title)
	assert.Empty(t, d.ImageURL)
}

func TestNewDetail_Transitioning(t *testing.T) {
	snap := session.Snapshot{
		State:         session.StateReady,
		Entry:         &catalog.Entry{Key: "k"},
		Total:         2,
		Transitioning: true,
	}

	d := NewDetail(snap, true)

	assert.True(t, d.Transitioning)
	assert.Equal(t, 1.0, d.OverlayOpacity)
}

func TestNewDetail_NotFound(t *testing.T) {
	exists := false
	snap := session.Snapshot{
		Address: "R9C9-r1c1",
		State:   session.StateNotFound,
		Debug:   session.Debug{Exists: &exists, LastError: "permission denied"},
	}

	d := NewDetail(snap, true)

	assert.Equal(t, "not_found", d.State)
	require.NotNil(t, d.Debug)
	assert.Equal(t, "R9C9-r1c1", d.Debug.Key)
	assert.Equal(t, "false", d.Debug.Exists)
	assert.Equal(t, "permission denied", d.Debug.LastError)
	assert.Empty(t, d.Position)
}

func TestNewDetail_NotFoundWithoutLookup(t *testing.T) {
	d := NewDetail(session.Snapshot{State: session.StateNotFound}, true)

	require.NotNil(t, d.Debug)
	assert.Equal(t, "unknown", d.Debug.Exists)
	assert.Equal(t, "none", d.Debug.LastError)
}

func TestNewDetail_Loading(t *testing.T) {
	d := NewDetail(session.Snapshot{Address: "R1C1", State: session.StateLoading}, true)

	assert.Equal(t, "loading", d.State)
	assert.Empty(t, d.Title)
	assert.Nil(t, d.Debug)
}
