package drag

import (
	"math"
	"sort"
)

// DefaultGapUnit and related constants define allocator defaults.
const (
	DefaultGapUnit  = 1.0
	DefaultTieBreak = 0.5
	DefaultEpsilon  = 0.0001
)

// Allocator assigns real-number ordering keys so that "insert between A and
// B" is always expressible without renumbering the whole sequence. Gap is
// the spacing used for appends and renumbering; TieBreak is the fractional
// offset applied when a midpoint would coincide with the source position
// and the move would otherwise be swallowed as a no-op.
type Allocator struct {
	Gap      float64
	TieBreak float64
}

// NewAllocator constructs an allocator with default spacing.
func NewAllocator() Allocator {
	return Allocator{Gap: DefaultGapUnit, TieBreak: DefaultTieBreak}
}

// InsertionPosition returns an ordering key for inserting at index into the
// ascending position sequence. An empty sequence yields the gap unit; index
// zero yields half the first position; an index past the end yields the
// last position plus one gap; anything else yields the midpoint of the two
// neighbors.
func (a Allocator) InsertionPosition(positions []float64, index int) float64 {
	if len(positions) == 0 {
		return a.gap()
	}
	if index <= 0 {
		return positions[0] / 2
	}
	if index >= len(positions) {
		return positions[len(positions)-1] + a.gap()
	}
	return (positions[index-1] + positions[index]) / 2
}

// BeforeTask returns the key for dropping a task directly onto the task at
// index within the same sequence. The dragged task must already be excluded
// from positions. When the ordinary midpoint coincides with the dragged
// task's current position the key is nudged past the target by the
// tie-break offset so the move stays detectable.
func (a Allocator) BeforeTask(positions []float64, index int, sourcePosition float64) float64 {
	pos := a.InsertionPosition(positions, index)
	if math.Abs(pos-sourcePosition) >= DefaultEpsilon {
		return pos
	}
	if index >= 0 && index < len(positions) {
		return positions[index] + a.tieBreak()
	}
	return pos + a.tieBreak()
}

// Renumber reassigns clean sequential keys (rank+1) * gap, preserving the
// relative order defined by the current positions. The result maps
// one-to-one onto the input slots. Renumbering an already-clean sequence is
// a no-op.
func (a Allocator) Renumber(positions []float64) []float64 {
	ranks := make([]int, len(positions))
	for i := range ranks {
		ranks[i] = i
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return positions[ranks[i]] < positions[ranks[j]]
	})
	out := make([]float64, len(positions))
	for rank, idx := range ranks {
		out[idx] = float64(rank+1) * a.gap()
	}
	return out
}

func (a Allocator) gap() float64 {
	if a.Gap > 0 {
		return a.Gap
	}
	return DefaultGapUnit
}

func (a Allocator) tieBreak() float64 {
	if a.TieBreak > 0 {
		return a.TieBreak
	}
	return DefaultTieBreak
}
