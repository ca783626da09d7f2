package companion

import "github.com/talgya/devscape/internal/mood"

// Trait progression constants.
const (
	// TraitLevelCost is the progress required per trait level.
	TraitLevelCost = 100.0
	// Progress granted per qualifying interaction, before mood scaling.
	empathyGain   = 12.0
	curiosityGain = 8.0
)

// Companion trait identifiers.
const (
	TraitEmpathy   = "empathy"
	TraitCuriosity = "curiosity"
)

// TraitSet tracks the companion's evolving traits. Progress accrues per
// interaction, scaled by the current mood (an agitated or elated companion
// imprints faster than a flat one), and converts into discrete levels.
type TraitSet struct {
	levels   map[string]int
	progress map[string]float64
}

// LevelUp describes one trait crossing a level boundary.
type LevelUp struct {
	Trait    string
	OldLevel int
	NewLevel int
}

// NewTraitSet creates an empty trait set; all traits start at level 0.
func NewTraitSet() *TraitSet {
	return &TraitSet{
		levels:   make(map[string]int),
		progress: make(map[string]float64),
	}
}

// Level returns the current level of a trait.
func (t *TraitSet) Level(trait string) int {
	return t.levels[trait]
}

// Levels returns a copy of all known trait levels.
func (t *TraitSet) Levels() map[string]int {
	out := make(map[string]int, len(t.levels))
	for k, v := range t.levels {
		out[k] = v
	}
	return out
}

// Advance adds mood-scaled progress to a trait and returns any level-ups
// crossed. The mood factor maps the scalar onto [0, 2] with 1.0 at neutral,
// so low moods slow evolution and high moods accelerate it.
func (t *TraitSet) Advance(trait string, gain float64, ms mood.Snapshot) []LevelUp {
	factor := ms.Value / mood.Neutral
	t.progress[trait] += gain * factor

	var ups []LevelUp
	for t.progress[trait] >= TraitLevelCost {
		t.progress[trait] -= TraitLevelCost
		old := t.levels[trait]
		t.levels[trait] = old + 1
		ups = append(ups, LevelUp{Trait: trait, OldLevel: old, NewLevel: old + 1})
	}
	return ups
}
