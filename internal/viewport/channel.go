// Package viewport owns the scroll offset of one list and broadcasts it to subscribers.
package viewport

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/centerband/internal/clock"
)

// State is the snapshot delivered to subscribers.
type State struct {
	OffsetY float64 `json:"offset_y"`
	Layout
}

// Listener receives a State on subscription and after every accepted update.
type Listener func(State)

// Stats counts channel activity since creation.
type Stats struct {
	Requested   uint64 `json:"requested"`
	Applied     uint64 `json:"applied"`
	Coalesced   uint64 `json:"coalesced"`
	Delivered   uint64 `json:"delivered"`
	Subscribers int    `json:"subscribers"`
}

type subscriber struct {
	id     uuid.UUID
	fn     Listener
	active bool
}

// delivery is one queued notification. Targets are fixed when the state is committed.
type delivery struct {
	state   State
	targets []*subscriber
}

// Channel holds the current State of one list. Deliveries happen one at a time in
// commit order; a listener may call back into the channel.
type Channel struct {
	id     uuid.UUID
	layout Layout
	sched  clock.Scheduler
	log    *logrus.Entry

	mu          sync.Mutex
	state       State
	subs        []*subscriber
	byID        map[uuid.UUID]*subscriber
	throttle    throttle
	queue       []delivery
	dispatching bool
	destroyed   bool
	stats       Stats
}

// Option mutates Channel configuration.
type Option func(*Channel)

// WithScheduler sets the scheduler used for trailing-edge updates. Defaults to clock.Real.
func WithScheduler(s clock.Scheduler) Option { //nolint:ireturn
	return func(c *Channel) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithName tags the channel's log entries.
func WithName(name string) Option { //nolint:ireturn
	return func(c *Channel) {
		if name != "" {
			c.log = c.log.WithField("name", name)
		}
	}
}

// New creates a Channel at offset zero. It fails with ErrInvalidConfig when the
// band is inverted, the item height is not positive or fewer than one column is set.
func New(cfg Config, opts ...Option) (*Channel, error) {
	layout, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	c := &Channel{
		id:     id,
		layout: layout,
		sched:  clock.Real{},
		log:    logrus.WithField("viewport", id.String()),
		state:  State{OffsetY: 0, Layout: layout},
		byID:   make(map[uuid.UUID]*subscriber),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.throttle.window = layout.RateLimit()
	c.log.Debugf("viewport created: item_height=%g columns=%d band=[%g,%g] rate_limit=%s",
		layout.ListItemHeight, layout.ColumnsPerRow, layout.CenterYStart, layout.CenterYEnd, c.throttle.window)
	return c, nil
}

// Layout returns the resolved configuration.
func (c *Channel) Layout() Layout { return c.layout }

// Current returns the committed State.
func (c *Channel) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a copy of the activity counters.
func (c *Channel) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Subscribers = len(c.subs)
	return s
}

// SetOffsetY requests a new scroll offset. Without a rate limit the state is committed
// and subscribers notified before it returns. With one, updates are throttled on the
// leading and trailing edge of each window. Non-finite offsets are accepted as is.
func (c *Channel) SetOffsetY(offsetY float64) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.stats.Requested++
	if c.throttle.window <= 0 {
		c.commitLocked(offsetY)
	} else {
		c.throttleLocked(offsetY)
	}
	c.mu.Unlock()
	c.drain()
}

// Subscribe registers fn and delivers the current State to it. The returned func
// unsubscribes and is safe to call more than once.
func (c *Channel) Subscribe(fn Listener) func() {
	c.mu.Lock()
	if c.destroyed || fn == nil {
		c.mu.Unlock()
		return func() {}
	}
	s := &subscriber{id: uuid.New(), fn: fn, active: true}
	c.subs = append(c.subs, s)
	c.byID[s.id] = s
	c.queue = append(c.queue, delivery{state: c.state, targets: []*subscriber{s}})
	c.mu.Unlock()
	c.log.Debugf("subscriber %s added", s.id)

	c.drain()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(s.id) })
	}
}

func (c *Channel) unsubscribe(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.byID[id]
	if !ok {
		return
	}
	s.active = false
	delete(c.byID, id)
	for i, cur := range c.subs {
		if cur == s {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.log.Debugf("subscriber %s removed", id)
}

// Destroy releases every subscription and cancels any pending trailing update.
func (c *Channel) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.throttle.cancel()
	for _, s := range c.subs {
		s.active = false
	}
	c.subs = nil
	c.byID = make(map[uuid.UUID]*subscriber)
	c.queue = nil
	c.log.Debug("viewport destroyed")
}

// commitLocked applies offsetY and queues a broadcast to the current subscribers.
func (c *Channel) commitLocked(offsetY float64) {
	c.state.OffsetY = offsetY
	c.stats.Applied++
	if len(c.subs) == 0 {
		return
	}
	targets := make([]*subscriber, len(c.subs))
	copy(targets, c.subs)
	c.queue = append(c.queue, delivery{state: c.state, targets: targets})
}

// drain delivers queued notifications unless another call is already doing so.
// Must be called without c.mu held.
func (c *Channel) drain() {
	c.mu.Lock()
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true
	for len(c.queue) > 0 {
		d := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		for _, s := range d.targets {
			if c.claimDelivery(s) {
				s.fn(d.state)
			}
		}
		c.mu.Lock()
	}
	c.queue = nil
	c.dispatching = false
	c.mu.Unlock()
}

// claimDelivery reports whether s is still subscribed, counting the delivery if so.
func (c *Channel) claimDelivery(s *subscriber) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || !s.active {
		return false
	}
	c.stats.Delivered++
	return true
}
