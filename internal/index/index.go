// Package index tags a subtree of list items with a fixed position.
package index

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidIndex is returned when an index is negative or not a whole number.
var ErrInvalidIndex = errors.New("invalid index")

// Channel broadcasts one immutable index.
type Channel struct {
	value int
}

// Default is the index seen by consumers outside of any index scope.
//
//nolint:gochecknoglobals // immutable zero scope.
var Default = &Channel{value: 0}

// New returns a Channel holding index.
func New(index int) (*Channel, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d is negative", ErrInvalidIndex, index)
	}
	return &Channel{value: index}, nil
}

// FromFloat is New for indices decoded as numbers, rejecting fractional and non-finite values.
func FromFloat(index float64) (*Channel, error) {
	if math.IsNaN(index) || math.IsInf(index, 0) || index != math.Trunc(index) {
		return nil, fmt.Errorf("%w: %v is not an integer", ErrInvalidIndex, index)
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %v is negative", ErrInvalidIndex, index)
	}
	if index >= float64(math.MaxInt) {
		return nil, fmt.Errorf("%w: %v is out of range", ErrInvalidIndex, index)
	}
	return New(int(index))
}

// Value returns the index.
func (c *Channel) Value() int { return c.value }

// Subscribe calls fn once with the index. There is nothing to unsubscribe from since
// the value never changes; the returned func is a no-op kept for symmetry.
func (c *Channel) Subscribe(fn func(int)) func() {
	if fn != nil {
		fn(c.value)
	}
	return func() {}
}
