// Package mood implements the companion's emotional state machine: a bounded
// scalar with derived category labels, nudged by decision deltas and pulled
// back toward neutral by passive decay.
package mood

import "time"

// Scalar bounds and category thresholds.
const (
	Min     = 0.0
	Max     = 100.0
	Neutral = 50.0

	CalmMax    = 33.0 // value <= CalmMax → calm
	CuriousMax = 66.0 // value <= CuriousMax → curious, above → agitated

	// DecayPerSecond is how fast the scalar drifts back toward Neutral.
	DecayPerSecond = 0.5

	// DeltaMin and DeltaMax bound a single applied delta.
	DeltaMin = -5
	DeltaMax = 5
)

// Category is the discrete label derived from the scalar.
type Category string

const (
	Calm     Category = "calm"
	Curious  Category = "curious"
	Agitated Category = "agitated"
)

// Glyph returns the overlay symbol shown above the companion for the category.
func (c Category) Glyph() string {
	switch c {
	case Calm:
		return "~"
	case Agitated:
		return "!"
	}
	return "?"
}

// Snapshot is an immutable view of the mood state handed to readers.
// Readers never receive a live handle to the state itself.
type Snapshot struct {
	Value    float64
	Category Category
}

// State holds the companion's mood. It is owned by exactly one goroutine
// (the frame loop) and mutated only through ApplyDelta and Decay.
type State struct {
	value float64
}

// New creates a mood state at the neutral midpoint.
func New() *State {
	return &State{value: Neutral}
}

// ClampDelta bounds a raw delta to [DeltaMin, DeltaMax].
func ClampDelta(d int) int {
	if d < DeltaMin {
		return DeltaMin
	}
	if d > DeltaMax {
		return DeltaMax
	}
	return d
}

// ApplyDelta shifts the scalar by a bounded delta, clamping the result to
// [Min, Max]. Returns the snapshot after the transition.
func (s *State) ApplyDelta(d int) Snapshot {
	s.value += float64(ClampDelta(d))
	if s.value < Min {
		s.value = Min
	}
	if s.value > Max {
		s.value = Max
	}
	return s.Snapshot()
}

// Decay pulls the scalar toward Neutral proportionally to elapsed time,
// never overshooting the midpoint. Deterministic for a given state and
// elapsed duration.
func (s *State) Decay(elapsed time.Duration) Snapshot {
	if elapsed <= 0 {
		return s.Snapshot()
	}
	step := DecayPerSecond * elapsed.Seconds()
	switch {
	case s.value > Neutral:
		s.value -= step
		if s.value < Neutral {
			s.value = Neutral
		}
	case s.value < Neutral:
		s.value += step
		if s.value > Neutral {
			s.value = Neutral
		}
	}
	return s.Snapshot()
}

// Snapshot returns an immutable copy of the current value and category.
func (s *State) Snapshot() Snapshot {
	return Snapshot{Value: s.value, Category: categorize(s.value)}
}

func categorize(v float64) Category {
	switch {
	case v <= CalmMax:
		return Calm
	case v <= CuriousMax:
		return Curious
	default:
		return Agitated
	}
}
