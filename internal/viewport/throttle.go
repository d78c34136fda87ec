package viewport

import (
	"time"

	"github.com/ensigniasec/centerband/internal/clock"
)

type throttlePhase int

const (
	phaseIdle throttlePhase = iota
	phaseWindowOpen
)

// throttle is the rate-limit state machine: idle, or a window open with an optional
// pending value. The generation invalidates timers that fire after being replaced or
// cancelled.
type throttle struct {
	window     time.Duration
	phase      throttlePhase
	hasPending bool
	pending    float64
	timer      clock.Timer
	gen        uint64
}

func (t *throttle) cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.phase = phaseIdle
	t.hasPending = false
}

// throttleLocked applies the leading edge or buffers offsetY for the trailing edge.
func (c *Channel) throttleLocked(offsetY float64) {
	switch c.throttle.phase {
	case phaseIdle:
		c.commitLocked(offsetY)
		c.openWindowLocked()
	case phaseWindowOpen:
		if c.throttle.hasPending {
			c.stats.Coalesced++
			c.log.Debugf("throttle: replacing pending offset %g with %g", c.throttle.pending, offsetY)
		}
		c.throttle.hasPending = true
		c.throttle.pending = offsetY
	}
}

func (c *Channel) openWindowLocked() {
	c.throttle.gen++
	gen := c.throttle.gen
	c.throttle.phase = phaseWindowOpen
	c.throttle.timer = c.sched.AfterFunc(c.throttle.window, func() { c.windowElapsed(gen) })
}

// windowElapsed closes a window. A pending value is committed as the trailing edge
// and opens the next window.
func (c *Channel) windowElapsed(gen uint64) {
	c.mu.Lock()
	if c.destroyed || gen != c.throttle.gen {
		c.mu.Unlock()
		return
	}
	c.throttle.timer = nil
	if c.throttle.hasPending {
		offsetY := c.throttle.pending
		c.throttle.hasPending = false
		c.commitLocked(offsetY)
		c.openWindowLocked()
	} else {
		c.throttle.phase = phaseIdle
	}
	c.mu.Unlock()
	c.drain()
}
