package membership

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/centerband/internal/index"
	"github.com/ensigniasec/centerband/internal/viewport"
)

// ViewportSource broadcasts viewport state. *viewport.Channel implements it.
type ViewportSource interface {
	Subscribe(fn viewport.Listener) (unsubscribe func())
}

// IndexSource broadcasts an item index. *index.Channel implements it.
type IndexSource interface {
	Subscribe(fn func(int)) (unsubscribe func())
}

// Consumer recomputes membership for one item whenever its sources notify.
type Consumer struct {
	onChange func(bool)

	mu       sync.Mutex
	state    viewport.State
	hasState bool
	index    int
	hasIndex bool
	closed   bool

	unsubscribeViewport func()
	unsubscribeIndex    func()
}

// Observe subscribes to both sources and calls onChange with the membership after
// every notification, whether or not the result changed. A nil ix observes index 0.
func Observe(vp ViewportSource, ix IndexSource, onChange func(inCenter bool)) *Consumer {
	if ix == nil {
		ix = index.Default
	}
	c := &Consumer{onChange: onChange}
	c.unsubscribeIndex = ix.Subscribe(c.onIndex)
	c.unsubscribeViewport = vp.Subscribe(c.onViewport)
	return c
}

func (c *Consumer) onIndex(i int) {
	c.mu.Lock()
	c.index, c.hasIndex = i, true
	c.mu.Unlock()
	c.recompute()
}

func (c *Consumer) onViewport(s viewport.State) {
	c.mu.Lock()
	c.state, c.hasState = s, true
	c.mu.Unlock()
	c.recompute()
}

func (c *Consumer) recompute() {
	c.mu.Lock()
	if c.closed || !c.hasState || !c.hasIndex {
		c.mu.Unlock()
		return
	}
	in := IsInCenter(c.state, c.index)
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(in)
	}
}

// Close unsubscribes from both sources. It is safe to call more than once.
func (c *Consumer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	idx := c.index
	c.mu.Unlock()

	if c.unsubscribeViewport != nil {
		c.unsubscribeViewport()
	}
	if c.unsubscribeIndex != nil {
		c.unsubscribeIndex()
	}
	logrus.Debugf("membership consumer for index %d closed", idx)
}
