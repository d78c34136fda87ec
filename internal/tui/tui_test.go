//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/centerband/internal/clock"
	"github.com/ensigniasec/centerband/internal/viewport"
)

func newTestModel(t *testing.T, cfg viewport.Config, items int, opts ...viewport.Option) Model {
	t.Helper()
	ch, err := viewport.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(ch.Destroy)

	b, closeAll, err := attach(ch, items)
	require.NoError(t, err)
	t.Cleanup(closeAll)

	return NewModel(ch, b, items, 10)
}

func gridConfig() viewport.Config {
	return viewport.Config{
		ListItemHeight: 40,
		ColumnsPerRow:  viewport.Int(3),
		CenterYStart:   40,
		CenterYEnd:     80,
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "pgdown":
			msg = tea.KeyMsg{Type: tea.KeyPgDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestAttach_InitialMembership(t *testing.T) {
	m := newTestModel(t, gridConfig(), 9)
	committed, in, callbacks := m.board.snapshot()

	assert.InDelta(t, 0.0, committed, 0)
	// Row 1 midpoint at 60 is inside [40, 80].
	assert.Equal(t, []bool{false, false, false, true, true, true, false, false, false}, in)
	assert.Equal(t, uint64(9), callbacks)
}

func TestUpdate_ScrollMovesBand(t *testing.T) {
	m := newTestModel(t, gridConfig(), 60)
	m = press(t, m, "down", "down", "down", "down") // 40px

	committed, in, _ := m.board.snapshot()
	assert.InDelta(t, 40.0, committed, 0)
	assert.InDelta(t, 40.0, m.requested, 0)
	assert.False(t, in[3])
	assert.True(t, in[6])

	m = press(t, m, "up", "k")
	committed, _, _ = m.board.snapshot()
	assert.InDelta(t, 20.0, committed, 0)
}

func TestUpdate_ScrollIsClamped(t *testing.T) {
	m := newTestModel(t, gridConfig(), 30)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: headerLines + footerLines + 4})
	m = next.(Model)

	m = press(t, m, "up")
	assert.InDelta(t, 0.0, m.requested, 0)

	// 10 rows of 40px with 4 visible lines.
	m = press(t, m, "G")
	assert.InDelta(t, 240.0, m.requested, 0)
	m = press(t, m, "pgdown")
	assert.InDelta(t, 240.0, m.requested, 0)
	m = press(t, m, "g")
	assert.InDelta(t, 0.0, m.requested, 0)
}

func TestUpdate_ThrottledScrollShowsPending(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	cfg := gridConfig()
	cfg.UpdateRateLimitMs = viewport.Float(100)
	m := newTestModel(t, cfg, 60, viewport.WithScheduler(clk))

	m = press(t, m, "down", "down", "down")
	committed, _, _ := m.board.snapshot()
	assert.InDelta(t, 10.0, committed, 0)
	assert.Contains(t, m.View(), "requested 30px")

	clk.Advance(100 * time.Millisecond)
	committed, _, _ = m.board.snapshot()
	assert.InDelta(t, 30.0, committed, 0)
	assert.NotContains(t, m.View(), "requested")
}

func TestView_MarksBandAndCells(t *testing.T) {
	m := newTestModel(t, gridConfig(), 9)
	view := m.View()

	assert.Contains(t, view, "centerband")
	assert.Contains(t, view, "[004]")
	assert.Contains(t, view, "in center: 3")

	var marked []string
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, "▶") {
			marked = append(marked, line)
		}
	}
	// Lines with tops at 0, 40 and 80 all touch [40, 80].
	require.Len(t, marked, 3)
	assert.Contains(t, marked[1], "[003]")
}

func TestUpdate_HelpAndQuit(t *testing.T) {
	m := newTestModel(t, gridConfig(), 3)
	m = press(t, m, "?")
	assert.True(t, m.helpVisible)
	assert.Contains(t, m.View(), "page up")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, "Shutting down...\n", next.View())
}

func TestRefresh_ReArmsListener(t *testing.T) {
	m := newTestModel(t, gridConfig(), 3)
	require.NotNil(t, m.Init())

	_, cmd := m.Update(refreshMsg{})
	require.NotNil(t, cmd)

	m.channel.SetOffsetY(5)
	assert.Equal(t, refreshMsg{}, cmd())
}
