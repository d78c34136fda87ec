// Package clock provides the scheduling primitive used for rate-limited updates.
package clock

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call stopped the timer.
	Stop() bool
}

// Scheduler schedules callbacks after a delay and reports the current time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// Real is a Scheduler backed by the runtime timers. Callbacks run on their own goroutine.
type Real struct{}

// AfterFunc implements Scheduler.
func (Real) AfterFunc(d time.Duration, f func()) Timer { //nolint:ireturn
	return time.AfterFunc(d, f)
}

// Now implements Scheduler.
func (Real) Now() time.Time { return time.Now() }
