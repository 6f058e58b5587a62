// Package browse is the interactive terminal browser: the top-level grid, the
// 4x4 sub-grid modal and the paginated detail screen.
package browse

import (
	"context"
	"errors"
	"log"
	"math"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/config"
	"github.com/dyluth/artmatrix/internal/cursor"
	"github.com/dyluth/artmatrix/internal/resolver"
	"github.com/dyluth/artmatrix/internal/session"
	"github.com/dyluth/artmatrix/internal/view"
)

type screen int

const (
	screenGrid screen = iota
	screenModal
	screenDetail
)

// wheelDelta is the input magnitude of one wheel notch or j/k press. It sits
// well above the noise threshold.
const wheelDelta = 100

// linesPerDelta converts input magnitude to description lines.
const linesPerDelta = 50

// openedMsg carries the result of a detail resolution.
type openedMsg struct {
	detail *session.Detail
	err    error
}

// changedMsg wakes the program after a cursor change.
type changedMsg struct{}

// identityMsg reports the end of anonymous sign-in.
type identityMsg struct{}

// Model is the bubbletea model. It is used through a pointer.
type Model struct {
	cfg      *config.Config
	resolver *resolver.Resolver
	identity *session.IdentityBootstrap

	screen             screen
	gridRow, gridCol   int
	modalRow, modalCol int

	detail   *session.Detail
	changes  chan struct{}
	desc     viewport.Model
	shownKey string

	width, height int
}

// NewModel creates the browser starting on the grid at R1C1. identity may be nil.
func NewModel(cfg *config.Config, r *resolver.Resolver, identity *session.IdentityBootstrap) *Model {
	vp := viewport.New(60, 8)
	vp.MouseWheelEnabled = false

	return &Model{
		cfg:      cfg,
		resolver: r,
		identity: identity,
		gridRow:  1,
		gridCol:  1,
		modalRow: 1,
		modalCol: 1,
		changes:  make(chan struct{}, 1),
		desc:     vp,
	}
}

// Init starts listening for cursor changes and identity completion.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForChange()}
	if m.identity != nil {
		ready := m.identity.Ready()
		cmds = append(cmds, func() tea.Msg {
			<-ready
			return identityMsg{}
		})
	}
	return tea.Batch(cmds...)
}

// waitForChange blocks until the cursor signals a change.
func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

// notify is the cursor's change callback. It runs on timer goroutines and
// must not touch the model.
func (m *Model) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.desc.Width = clampInt(msg.Width-4, 20, 100)
		m.desc.Height = clampInt(msg.Height-14, 3, 30)
		return m, nil

	case openedMsg:
		if msg.detail != m.detail {
			return m, nil
		}
		if msg.err != nil && !errors.Is(msg.err, session.ErrStale) {
			log.Printf("[Browse] open failed: %v", msg.err)
		}
		m.syncDescription()
		return m, nil

	case changedMsg:
		m.syncDescription()
		return m, m.waitForChange()

	case identityMsg:
		return m, nil

	case tea.MouseMsg:
		if m.screen != screenDetail || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.input(wheelDelta)
		case tea.MouseButtonWheelUp:
			m.input(-wheelDelta)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeDetail()
			return m, tea.Quit
		}
		switch m.screen {
		case screenGrid:
			return m.updateGrid(msg)
		case screenModal:
			return m.updateModal(msg)
		case screenDetail:
			return m.updateDetail(msg)
		}
	}
	return m, nil
}

func (m *Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.gridRow = clampInt(m.gridRow-1, 1, m.cfg.Grid.Rows)
	case "down", "j":
		m.gridRow = clampInt(m.gridRow+1, 1, m.cfg.Grid.Rows)
	case "left", "h":
		m.gridCol = clampInt(m.gridCol-1, 1, m.cfg.Grid.Cols)
	case "right", "l":
		m.gridCol = clampInt(m.gridCol+1, 1, m.cfg.Grid.Cols)
	case "enter":
		m.modalRow, m.modalCol = 1, 1
		m.screen = screenModal
	}
	return m, nil
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.screen = screenGrid
	case "up", "k":
		m.modalRow = clampInt(m.modalRow-1, 1, address.SubGridSize)
	case "down", "j":
		m.modalRow = clampInt(m.modalRow+1, 1, address.SubGridSize)
	case "left", "h":
		m.modalCol = clampInt(m.modalCol-1, 1, address.SubGridSize)
	case "right", "l":
		m.modalCol = clampInt(m.modalCol+1, 1, address.SubGridSize)
	case "enter":
		return m, m.openDetail(m.parent().Child(m.modalRow, m.modalCol).String())
	}
	return m, nil
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.closeDetail()
		return m, tea.Quit
	case "esc", "backspace":
		// Back to the modal this detail was opened from
		m.closeDetail()
		m.screen = screenModal
	case "down", "j":
		m.input(wheelDelta)
	case "up", "k":
		m.input(-wheelDelta)
	case "pgdown", " ", "n":
		if m.detail != nil {
			m.detail.Advance()
		}
	case "pgup", "p":
		if m.detail != nil {
			m.detail.Retreat()
		}
	}
	return m, nil
}

// input routes one directional input through the session, with the
// description viewport as the nested scroll region.
func (m *Model) input(delta float64) {
	if m.detail == nil {
		return
	}
	m.detail.Handle(delta, descRegion{vp: &m.desc})
}

func (m *Model) parent() address.ParentKey {
	return address.ParentKey{Row: m.gridRow, Col: m.gridCol}
}

// openDetail starts a fresh session for raw and returns the resolution command.
func (m *Model) openDetail(raw string) tea.Cmd {
	m.closeDetail()

	detail := session.NewDetail(m.resolver, m.cfg.CursorConfig(), cursor.WithOnChange(m.notify))
	m.detail = detail
	m.screen = screenDetail

	return func() tea.Msg {
		err := detail.Open(context.Background(), raw)
		return openedMsg{detail: detail, err: err}
	}
}

func (m *Model) closeDetail() {
	if m.detail != nil {
		m.detail.Close()
		m.detail = nil
	}
	m.shownKey = ""
	m.desc.SetContent("")
}

// syncDescription reloads the viewport when the entry under the cursor changed.
func (m *Model) syncDescription() {
	if m.detail == nil {
		return
	}
	snap := m.detail.Snapshot()
	key := ""
	if snap.Entry != nil {
		key = snap.Entry.Key
	}
	if key == m.shownKey {
		return
	}
	m.shownKey = key
	desc := ""
	if snap.Entry != nil {
		desc = snap.Entry.Description
	}
	if desc == "" {
		desc = view.DefaultDescription
	}
	m.desc.SetContent(wrap(desc, m.desc.Width))
	m.desc.GotoTop()
}

// descRegion adapts the description viewport to cursor.ScrollRegion.
type descRegion struct {
	vp *viewport.Model
}

func (r descRegion) CanScroll(dir cursor.Direction) bool {
	if dir == cursor.Forward {
		return !r.vp.AtBottom()
	}
	return !r.vp.AtTop()
}

func (r descRegion) ScrollBy(delta float64) {
	lines := int(math.Max(1, math.Abs(delta)/linesPerDelta))
	if delta > 0 {
		r.vp.LineDown(lines)
	} else {
		r.vp.LineUp(lines)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
