// Package trace replays recorded scroll sessions through a viewport channel in virtual time.
package trace

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/centerband/internal/clock"
	"github.com/ensigniasec/centerband/internal/config"
	"github.com/ensigniasec/centerband/internal/index"
	"github.com/ensigniasec/centerband/internal/membership"
	"github.com/ensigniasec/centerband/internal/validate"
	"github.com/ensigniasec/centerband/internal/viewport"
)

var (
	// ErrEmptyTrace is returned for traces without events.
	ErrEmptyTrace = errors.New("trace has no events")
	// ErrUnorderedEvents is returned when event times go backwards.
	ErrUnorderedEvents = errors.New("trace events are not in time order")
)

// Event is one SetOffsetY call at a time relative to the start of the session.
type Event struct {
	AtMs    float64 `json:"at_ms" yaml:"at_ms" validate:"gte=0"`
	OffsetY float64 `json:"offset_y" yaml:"offset_y"`
}

// Trace is a recorded scroll session.
type Trace struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Viewport, when set, replaces the layout supplied to Replay.
	Viewport *viewport.Config `json:"viewport,omitempty" yaml:"viewport,omitempty"`
	// Watch holds the indices to observe when Replay is given none.
	Watch  []float64 `json:"watch,omitempty" yaml:"watch,omitempty"`
	Events []Event   `json:"events" yaml:"events" validate:"dive"`
}

// Notification is one membership callback observed during replay.
type Notification struct {
	AtMs     float64 `json:"at_ms"`
	OffsetY  float64 `json:"offset_y"`
	Index    int     `json:"index"`
	InCenter bool    `json:"in_center"`
	// Initial marks the callback delivered on subscription.
	Initial bool `json:"initial,omitempty"`
}

// Report is the outcome of one replay.
type Report struct {
	RunID         string          `json:"run_id"`
	Name          string          `json:"name,omitempty"`
	Layout        viewport.Layout `json:"layout"`
	Indices       []int           `json:"indices"`
	Notifications []Notification  `json:"notifications"`
	Stats         viewport.Stats  `json:"stats"`
}

// Load reads and validates a JSON or YAML trace file.
func Load(path string) (*Trace, error) {
	expanded, err := config.ExpandTilde(path)
	if err != nil {
		return nil, err
	}
	data, err := config.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	return Parse(expanded, data)
}

// Parse decodes a trace, choosing the format from path's extension.
func Parse(path string, data []byte) (*Trace, error) {
	var t Trace
	if err := config.Unmarshal(path, data, &t); err != nil {
		return nil, fmt.Errorf("parse trace %s: %w", path, err)
	}
	if t.Name == "" {
		t.Name = path
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &t, nil
}

// Validate checks the events and watched indices.
func (t *Trace) Validate() error {
	if len(t.Events) == 0 {
		return ErrEmptyTrace
	}
	if err := validate.Struct(t); err != nil {
		return err
	}
	for i := 1; i < len(t.Events); i++ {
		if t.Events[i].AtMs < t.Events[i-1].AtMs {
			return fmt.Errorf("%w: event %d at %gms follows %gms", ErrUnorderedEvents, i, t.Events[i].AtMs, t.Events[i-1].AtMs)
		}
	}
	_, err := t.Indices()
	return err
}

// Indices converts the watched indices, rejecting negative or fractional values.
func (t *Trace) Indices() ([]int, error) {
	out := make([]int, 0, len(t.Watch))
	for _, w := range t.Watch {
		ix, err := index.FromFloat(w)
		if err != nil {
			return nil, err
		}
		out = append(out, ix.Value())
	}
	return out, nil
}

// Replay drives a fresh channel through the trace on a virtual clock and records every
// membership callback. Pending trailing updates are flushed after the last event.
func Replay(t *Trace, cfg viewport.Config, indices []int) (*Report, error) {
	if t.Viewport != nil {
		cfg = *t.Viewport
	}
	if len(indices) == 0 {
		var err error
		if indices, err = t.Indices(); err != nil {
			return nil, err
		}
	}

	epoch := time.Unix(0, 0)
	m := clock.NewManual(epoch)
	ch, err := viewport.New(cfg, viewport.WithScheduler(m), viewport.WithName(t.Name))
	if err != nil {
		return nil, err
	}
	defer ch.Destroy()

	report := &Report{
		RunID:   uuid.NewString(),
		Name:    t.Name,
		Layout:  ch.Layout(),
		Indices: indices,
	}
	logrus.Debugf("replay %s: %d events, %d indices", report.RunID, len(t.Events), len(indices))

	// Registered first so it runs before the consumers on every delivery.
	var delivered float64
	initial := true
	unsubscribe := ch.Subscribe(func(s viewport.State) { delivered = s.OffsetY })
	defer unsubscribe()

	consumers := make([]*membership.Consumer, 0, len(indices))
	defer func() {
		for _, c := range consumers {
			c.Close()
		}
	}()
	for _, i := range indices {
		ix, err := index.New(i)
		if err != nil {
			return nil, err
		}
		consumers = append(consumers, membership.Observe(ch, ix, func(in bool) {
			report.Notifications = append(report.Notifications, Notification{
				AtMs:     sinceMs(epoch, m.Now()),
				OffsetY:  delivered,
				Index:    i,
				InCenter: in,
				Initial:  initial,
			})
		}))
	}
	initial = false

	for _, e := range t.Events {
		m.AdvanceTo(epoch.Add(msDuration(e.AtMs)))
		ch.SetOffsetY(e.OffsetY)
	}
	for {
		deadline, ok := m.NextDeadline()
		if !ok {
			break
		}
		m.AdvanceTo(deadline)
	}

	report.Stats = ch.Stats()
	return report, nil
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func sinceMs(epoch, now time.Time) float64 {
	return float64(now.Sub(epoch)) / float64(time.Millisecond)
}
