package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/centerband/internal/index"
	"github.com/ensigniasec/centerband/internal/membership"
	"github.com/ensigniasec/centerband/internal/viewport"
)

// board collects what the channel's subscribers last saw. It is written from
// membership callbacks, which may run on a timer goroutine, and read by View.
type board struct {
	mu            sync.Mutex
	inCenter      []bool
	committed     float64
	notifications uint64

	// dirty holds at most one pending refresh signal.
	dirty chan struct{}
}

func newBoard(items int) *board {
	return &board{
		inCenter: make([]bool, items),
		dirty:    make(chan struct{}, 1),
	}
}

func (b *board) setMembership(i int, in bool) {
	b.mu.Lock()
	b.inCenter[i] = in
	b.notifications++
	b.mu.Unlock()
	b.signal()
}

func (b *board) setCommitted(offsetY float64) {
	b.mu.Lock()
	b.committed = offsetY
	b.mu.Unlock()
	b.signal()
}

func (b *board) signal() {
	select {
	case b.dirty <- struct{}{}:
	default:
	}
}

// snapshot returns the committed offset, a copy of the membership flags and the callback count.
func (b *board) snapshot() (float64, []bool, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	in := make([]bool, len(b.inCenter))
	copy(in, b.inCenter)
	return b.committed, in, b.notifications
}

// attach subscribes the board to ch and observes every item index. The returned
// func closes all subscriptions.
func attach(ch *viewport.Channel, items int) (*board, func(), error) {
	b := newBoard(items)
	unsubscribe := ch.Subscribe(func(s viewport.State) { b.setCommitted(s.OffsetY) })

	consumers := make([]*membership.Consumer, 0, items)
	closeAll := func() {
		for _, c := range consumers {
			c.Close()
		}
		unsubscribe()
	}
	for i := range items {
		ix, err := index.New(i)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		consumers = append(consumers, membership.Observe(ch, ix, func(in bool) { b.setMembership(i, in) }))
	}
	return b, closeAll, nil
}

// Model is the root Bubble Tea model.
type Model struct {
	channel *viewport.Channel
	layout  viewport.Layout
	board   *board

	items     int
	step      float64
	requested float64

	width    int
	height   int
	quitting bool

	// ui state
	helpVisible bool
	progress    progress.Model
	help        help.Model

	// keymap for consistent keybindings
	keys keyMap
}

// NewModel constructs a Model over a channel whose subscribers feed b.
func NewModel(ch *viewport.Channel, b *board, items int, step float64) Model {
	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	return Model{
		channel:  ch,
		layout:   ch.Layout(),
		board:    b,
		items:    items,
		step:     step,
		progress: p,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listenForRefresh()
}

// listenForRefresh returns a Tea command that waits for the next board change.
func (m Model) listenForRefresh() tea.Cmd {
	return func() tea.Msg {
		<-m.board.dirty
		return refreshMsg{}
	}
}
