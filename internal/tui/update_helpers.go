package tui

import (
	"math"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKey processes key bindings and returns updated model and command.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) { // nolint:ireturn
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.scrollTo(m.requested - m.step)

	case key.Matches(msg, m.keys.Down):
		m.scrollTo(m.requested + m.step)

	case key.Matches(msg, m.keys.PageUp):
		m.scrollTo(m.requested - m.viewportPx())

	case key.Matches(msg, m.keys.PageDown):
		m.scrollTo(m.requested + m.viewportPx())

	case key.Matches(msg, m.keys.Home):
		m.scrollTo(0)

	case key.Matches(msg, m.keys.End):
		m.scrollTo(m.maxOffset())
	}

	return m, nil
}

// scrollTo clamps y to the scroll range and hands it to the channel.
func (m *Model) scrollTo(y float64) {
	y = math.Max(0, math.Min(y, m.maxOffset()))
	m.requested = y
	m.channel.SetOffsetY(y)
}

// rows is the number of grid rows needed for all items.
func (m Model) rows() int {
	cols := m.layout.ColumnsPerRow
	return (m.items + cols - 1) / cols
}

// gridLines is the number of terminal lines available to the grid. One line shows one row.
func (m Model) gridLines() int {
	if m.height == 0 {
		return defaultGridLines
	}
	lines := m.height - headerLines - footerLines
	if m.helpVisible {
		lines -= 2
	}
	return max(lines, gridMinLines)
}

// viewportPx is the height of the visible grid in list pixels.
func (m Model) viewportPx() float64 {
	return float64(m.gridLines()) * m.layout.ListItemHeight
}

// maxOffset is the largest offset that still fills the grid.
func (m Model) maxOffset() float64 {
	return math.Max(0, float64(m.rows())*m.layout.ListItemHeight-m.viewportPx())
}

// bandHits reports whether a line whose top sits at lineTop overlaps the center band.
func (m Model) bandHits(lineTop float64) bool {
	return lineTop <= m.layout.CenterYEnd && lineTop+m.layout.ListItemHeight >= m.layout.CenterYStart
}
