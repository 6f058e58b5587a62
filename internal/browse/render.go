package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyluth/artmatrix/internal/session"
	"github.com/dyluth/artmatrix/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cellStyle     = lipgloss.NewStyle().Width(5).Align(lipgloss.Center)
	selectedStyle = cellStyle.Reverse(true).Bold(true)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	modalCell     = lipgloss.NewStyle().Width(7).Align(lipgloss.Center)
	modalSelected = modalCell.Reverse(true).Bold(true)
	fadedStyle    = lipgloss.NewStyle().Faint(true)
	debugStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("160")).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the current screen.
func (m *Model) View() string {
	var b strings.Builder
	switch m.screen {
	case screenGrid:
		b.WriteString(m.viewGrid())
	case screenModal:
		b.WriteString(m.viewModal())
	case screenDetail:
		b.WriteString(m.viewDetail())
	}
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	return b.String()
}

func (m *Model) viewGrid() string {
	g := view.NewGrid(m.cfg.Grid.Rows, m.cfg.Grid.Cols)

	var b strings.Builder
	b.WriteString(titleStyle.Render("artmatrix"))
	b.WriteString("\n\n")

	b.WriteString(cellStyle.Render(""))
	for _, h := range g.ColumnHeaders {
		b.WriteString(headerStyle.Inherit(cellStyle).Render(h))
	}
	b.WriteString("\n")

	for r, row := range g.Cells {
		b.WriteString(headerStyle.Inherit(cellStyle).Render(g.RowHeaders[r]))
		for _, cell := range row {
			if cell.Row == m.gridRow && cell.Col == m.gridCol {
				b.WriteString(selectedStyle.Render("■"))
			} else {
				b.WriteString(cellStyle.Render("·"))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s  arrows move · enter open · q quit", m.parent())))
	return b.String()
}

func (m *Model) viewModal() string {
	sg := view.NewSubGrid(m.parent())

	var b strings.Builder
	b.WriteString(titleStyle.Render(sg.Parent))
	b.WriteString("\n\n")
	for _, row := range sg.Cells {
		for _, cell := range row {
			if cell.Row == m.modalRow && cell.Col == m.modalCol {
				b.WriteString(modalSelected.Render(cell.Label))
			} else {
				b.WriteString(modalCell.Render(cell.Label))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("arrows move · enter open · esc close"))
	return modalStyle.Render(b.String())
}

func (m *Model) viewDetail() string {
	if m.detail == nil {
		return ""
	}
	d := view.NewDetail(m.detail.Snapshot(), m.cfg.StrictImages())

	switch d.State {
	case session.StateLoading.String(), session.StateIdle.String():
		return titleStyle.Render(d.Address) + "\n\nLoading..."
	case session.StateNotFound.String():
		return m.viewNotFound(d)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s · %s", d.Author, orDash(d.Year)))
	b.WriteString("\n")
	if d.ImageURL != "" {
		b.WriteString(headerStyle.Render(d.ImageURL))
		b.WriteString("\n")
	}
	if len(d.Tags) > 0 {
		b.WriteString(headerStyle.Render("#" + strings.Join(d.Tags, " #")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.desc.View())
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %s", d.Key, d.Position)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("wheel/j/k scroll · pgup/pgdn previous/next · esc back"))

	content := b.String()
	// The fade overlay: content is dimmed for the whole transition
	if d.OverlayOpacity > 0 {
		content = fadedStyle.Render(content)
	}
	return content
}

func (m *Model) viewNotFound(d view.Detail) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Not found"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Nothing to show for %s.", d.Address))
	b.WriteString("\n\n")

	dbg := fmt.Sprintf("key: %s\nexists: %s\nlast error: %s", d.Debug.Key, d.Debug.Exists, d.Debug.LastError)
	if len(d.Debug.Tried) > 0 {
		dbg += "\ntried: " + strings.Join(d.Debug.Tried, ", ")
	}
	b.WriteString(debugStyle.Render(dbg))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("esc back"))
	return b.String()
}

func (m *Model) viewStatus() string {
	if m.identity == nil {
		return ""
	}
	select {
	case <-m.identity.Ready():
	default:
		return helpStyle.Render("signing in...")
	}
	if id := m.identity.Identity(); id != nil {
		return helpStyle.Render("anonymous session " + shortID(id.UID))
	}
	return helpStyle.Render("offline: anonymous sign-in failed")
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
