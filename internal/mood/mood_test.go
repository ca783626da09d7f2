package mood

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDeltaStaysInBounds(t *testing.T) {
	s := New()

	// Hammer the ceiling.
	for i := 0; i < 100; i++ {
		snap := s.ApplyDelta(DeltaMax)
		require.LessOrEqual(t, snap.Value, Max)
		require.GreaterOrEqual(t, snap.Value, Min)
	}
	assert.Equal(t, Max, s.Snapshot().Value)

	// Hammer the floor.
	for i := 0; i < 100; i++ {
		snap := s.ApplyDelta(DeltaMin)
		require.LessOrEqual(t, snap.Value, Max)
		require.GreaterOrEqual(t, snap.Value, Min)
	}
	assert.Equal(t, Min, s.Snapshot().Value)
}

func TestApplyDeltaClampsOversizedDeltas(t *testing.T) {
	s := New()
	snap := s.ApplyDelta(1000)
	assert.Equal(t, Neutral+float64(DeltaMax), snap.Value)

	s = New()
	snap = s.ApplyDelta(-1000)
	assert.Equal(t, Neutral+float64(DeltaMin), snap.Value)
}

func TestDecayMovesTowardNeutralWithoutOvershoot(t *testing.T) {
	t.Run("from above", func(t *testing.T) {
		s := New()
		s.ApplyDelta(DeltaMax)
		s.ApplyDelta(DeltaMax)
		prev := s.Snapshot().Value
		require.Greater(t, prev, Neutral)

		for i := 0; i < 200; i++ {
			snap := s.Decay(100 * time.Millisecond)
			require.LessOrEqual(t, snap.Value, prev, "decay must be monotone")
			require.GreaterOrEqual(t, snap.Value, Neutral, "decay must not overshoot")
			prev = snap.Value
		}
		assert.Equal(t, Neutral, prev)
	})

	t.Run("from below", func(t *testing.T) {
		s := New()
		s.ApplyDelta(DeltaMin)
		s.ApplyDelta(DeltaMin)
		prev := s.Snapshot().Value
		require.Less(t, prev, Neutral)

		for i := 0; i < 200; i++ {
			snap := s.Decay(100 * time.Millisecond)
			require.GreaterOrEqual(t, snap.Value, prev)
			require.LessOrEqual(t, snap.Value, Neutral)
			prev = snap.Value
		}
		assert.Equal(t, Neutral, prev)
	})
}

func TestDecayIgnoresNonPositiveElapsed(t *testing.T) {
	s := New()
	s.ApplyDelta(DeltaMax)
	before := s.Snapshot().Value

	assert.Equal(t, before, s.Decay(0).Value)
	assert.Equal(t, before, s.Decay(-time.Second).Value)
}

func TestCategories(t *testing.T) {
	tests := []struct {
		value float64
		want  Category
	}{
		{Min, Calm},
		{CalmMax, Calm},
		{CalmMax + 1, Curious},
		{Neutral, Curious},
		{CuriousMax, Curious},
		{CuriousMax + 1, Agitated},
		{Max, Agitated},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorize(tt.value), "value %v", tt.value)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	s.ApplyDelta(DeltaMax)
	assert.Equal(t, Neutral, snap.Value, "snapshot must not track later mutation")
}
