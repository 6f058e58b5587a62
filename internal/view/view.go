// Package view assembles display data for the grid, the 4x4 sub-grid and the
// detail screen. It holds no state of its own.
package view

import (
	"fmt"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/session"
	"github.com/dyluth/artmatrix/pkg/catalog"
)

// Display defaults for missing entry fields.
const (
	DefaultTitle       = "Untitled"
	DefaultAuthor      = "Unknown"
	DefaultDescription = "No description."
)

// Cell is one clickable position in a grid.
type Cell struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
}

// Grid is the top-level R_MAX x C_MAX grid.
type Grid struct {
	Rows          int      `json:"rows"`
	Cols          int      `json:"cols"`
	ColumnHeaders []string `json:"columnHeaders"`
	RowHeaders    []string `json:"rowHeaders"`
	Cells         [][]Cell `json:"cells"`
}

// NewGrid builds the grid model. Cells[r-1][c-1] holds parent R<r>C<c>.
func NewGrid(rows, cols int) Grid {
	g := Grid{
		Rows:          rows,
		Cols:          cols,
		ColumnHeaders: make([]string, cols),
		RowHeaders:    make([]string, rows),
		Cells:         make([][]Cell, rows),
	}
	for c := 1; c <= cols; c++ {
		g.ColumnHeaders[c-1] = fmt.Sprintf("C%d", c)
	}
	for r := 1; r <= rows; r++ {
		g.RowHeaders[r-1] = fmt.Sprintf("R%d", r)
		row := make([]Cell, cols)
		for c := 1; c <= cols; c++ {
			row[c-1] = Cell{
				Key:   address.ParentKey{Row: r, Col: c}.String(),
				Label: fmt.Sprintf("(%d,%d)", r, c),
				Row:   r,
				Col:   c,
			}
		}
		g.Cells[r-1] = row
	}
	return g
}

// SubGrid is the 4x4 modal opened from a grid cell.
type SubGrid struct {
	Parent string   `json:"parent"`
	Cells  [][]Cell `json:"cells"`
}

// NewSubGrid builds the modal for parent. Cell keys use the canonical spelling.
func NewSubGrid(parent address.ParentKey) SubGrid {
	sg := SubGrid{Parent: parent.String(), Cells: make([][]Cell, address.SubGridSize)}
	for r := 1; r <= address.SubGridSize; r++ {
		row := make([]Cell, address.SubGridSize)
		for c := 1; c <= address.SubGridSize; c++ {
			row[c-1] = Cell{
				Key:   parent.Child(r, c).String(),
				Label: fmt.Sprintf("%d,%d", r, c),
				Row:   r,
				Col:   c,
			}
		}
		sg.Cells[r-1] = row
	}
	return sg
}

// Debug is the not-found diagnostics panel.
type Debug struct {
	Key       string   `json:"key"`
	Exists    string   `json:"exists"`
	LastError string   `json:"lastError"`
	Tried     []string `json:"tried,omitempty"`
}

// Detail is what the detail screen renders.
type Detail struct {
	Address     string   `json:"address"`
	State       string   `json:"state"`
	Key         string   `json:"key,omitempty"`
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	Year        string   `json:"year,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Position       string  `json:"position,omitempty"`
	Index          int     `json:"index"`
	Total          int     `json:"total"`
	Transitioning  bool    `json:"transitioning"`
	OverlayOpacity float64 `json:"overlayOpacity"`
	Debug          *Debug  `json:"debug,omitempty"`
}

// NewDetail turns a session snapshot into display data. strict selects the
// image rule used to decide whether ImageURL is shown.
func NewDetail(snap session.Snapshot, strict bool) Detail {
	d := Detail{
		Address:       snap.Address,
		State:         snap.State.String(),
		Index:         snap.Index,
		Total:         snap.Total,
		Transitioning: snap.Transitioning,
	}
	if snap.Transitioning {
		d.OverlayOpacity = 1
	}

	switch snap.State {
	case session.StateNotFound:
		d.Debug = newDebug(snap)
		return d
	case session.StateReady:
	default:
		return d
	}

	if e := snap.Entry; e != nil {
		fillEntry(&d, e, strict)
	}
	if snap.Total > 0 {
		d.Position = fmt.Sprintf("%d/%d", snap.Index+1, snap.Total)
	}
	return d
}

func fillEntry(d *Detail, e *catalog.Entry, strict bool) {
	d.Key = e.Key
	d.Title = orDefault(e.Title, DefaultTitle)
	d.Author = orDefault(e.Author, DefaultAuthor)
	d.Year = e.Year
	d.Description = orDefault(e.Description, DefaultDescription)
	d.Tags = e.Tags
	if e.HasImage(strict) {
		d.ImageURL = e.ImageURL
	}
}

func newDebug(snap session.Snapshot) *Debug {
	dbg := &Debug{
		Key:       snap.Address,
		Exists:    "unknown",
		LastError: orDefault(snap.Debug.LastError, "none"),
		Tried:     snap.Debug.Tried,
	}
	if snap.Debug.Exists != nil {
		dbg.Exists = fmt.Sprintf("%t", *snap.Debug.Exists)
	}
	return dbg
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
