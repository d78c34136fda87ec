package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

//nolint:gochecknoglobals // shared styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cellStyle     = lipgloss.NewStyle().Width(cellWidth).Foreground(lipgloss.Color("245"))
	centerStyle   = lipgloss.NewStyle().Width(cellWidth).Bold(true).Foreground(lipgloss.Color("46"))
	gutterStyle   = lipgloss.NewStyle().Width(gutterWidth).Foreground(lipgloss.Color("208"))
	pendingMarker = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("…")
)

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	committed, inCenter, callbacks := m.board.snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("centerband"))
	b.WriteString(subtleStyle.Render(" • center band membership"))
	b.WriteString("\n")
	b.WriteString(renderStatus(m, committed, inCenter, callbacks))
	b.WriteString("\n")
	b.WriteString(renderPosition(m, committed))
	b.WriteString("\n\n")
	b.WriteString(renderGrid(m, committed, inCenter))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderStatus(m Model, committed float64, inCenter []bool, callbacks uint64) string {
	count := 0
	for _, in := range inCenter {
		if in {
			count++
		}
	}
	offset := fmt.Sprintf("offset %.0fpx", committed)
	if committed != m.requested {
		offset += fmt.Sprintf(" (requested %.0fpx %s)", m.requested, pendingMarker)
	}
	rate := "unthrottled"
	if d := m.layout.RateLimit(); d > 0 {
		rate = "throttle " + d.String()
	}
	return subtleStyle.Render(fmt.Sprintf("%s • band [%g, %g] • %s • in center: %d • callbacks: %d",
		offset, m.layout.CenterYStart, m.layout.CenterYEnd, rate, count, callbacks))
}

func renderPosition(m Model, committed float64) string {
	limit := m.maxOffset()
	if limit <= 0 {
		return m.progress.ViewAs(0)
	}
	return m.progress.ViewAs(math.Min(committed/limit, 1))
}

// renderGrid draws one line per row starting from the row at the committed offset.
// The gutter marks lines that overlap the center band.
func renderGrid(m Model, committed float64, inCenter []bool) string {
	h := m.layout.ListItemHeight
	cols := m.layout.ColumnsPerRow
	topRow := int(math.Floor(committed / h))

	var b strings.Builder
	for line := range m.gridLines() {
		row := topRow + line
		lineTop := float64(row)*h - committed

		gutter := " "
		if m.bandHits(lineTop) {
			gutter = "▶"
		}
		b.WriteString(gutterStyle.Render(gutter))

		for col := range cols {
			i := row*cols + col
			if row < 0 || i >= m.items {
				break
			}
			label := fmt.Sprintf("[%03d]", i)
			if i < len(inCenter) && inCenter[i] {
				b.WriteString(centerStyle.Render(label))
				continue
			}
			b.WriteString(cellStyle.Render(label))
		}
		b.WriteString("\n")
	}
	return b.String()
}
