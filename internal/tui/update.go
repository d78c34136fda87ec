package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		m.help.Width = x.Width
		m.progress.Width = min(max(x.Width-gutterWidth, 1), progressMaxWidth)
		// A taller window can shrink the scroll range.
		if m.requested > m.maxOffset() {
			m.scrollTo(m.maxOffset())
		}
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(x)
		return m, cmd

	case refreshMsg:
		return m, m.listenForRefresh()
	}

	return m, nil
}
