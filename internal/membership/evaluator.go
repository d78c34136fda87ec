// Package membership decides whether list items fall inside the viewport's center band.
package membership

import (
	"math"

	"github.com/ensigniasec/centerband/internal/viewport"
)

// Result is the membership of one index together with the geometry that produced it.
type Result struct {
	Index     int     `json:"index"`
	Row       float64 `json:"row"`
	OffsetTop float64 `json:"offset_top"`
	LowerY    float64 `json:"lower_y"`
	UpperY    float64 `json:"upper_y"`
	InCenter  bool    `json:"in_center"`
}

// IsInCenter reports whether the item at index is in the center band of state.
//
// The two probe points are tested with an OR per band edge and an AND across edges.
// This is not an interval-overlap test and must stay as is: callers rely on the exact
// outcome. NaN anywhere in the inputs yields false.
func IsInCenter(state viewport.State, index int) bool {
	return Probe(state, index).InCenter
}

// Probe computes the membership geometry of the item at index.
func Probe(state viewport.State, index int) Result {
	row := math.Floor(float64(index) / float64(state.ColumnsPerRow))
	offsetTop := state.ListItemHeight * row
	relativeY := offsetTop - state.OffsetY
	lowerY := relativeY + state.ListItemLowerBound
	upperY := relativeY + state.ListItemUpperBound

	in := (lowerY >= state.CenterYStart || upperY >= state.CenterYStart) &&
		(lowerY <= state.CenterYEnd || upperY <= state.CenterYEnd)

	return Result{
		Index:     index,
		Row:       row,
		OffsetTop: offsetTop,
		LowerY:    lowerY,
		UpperY:    upperY,
		InCenter:  in,
	}
}

// Evaluate probes every index against the same state.
func Evaluate(state viewport.State, indices []int) []Result {
	out := make([]Result, 0, len(indices))
	for _, i := range indices {
		out = append(out, Probe(state, i))
	}
	return out
}
