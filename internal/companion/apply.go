package companion

import (
	"time"

	"github.com/talgya/devscape/internal/lineage"
	"github.com/talgya/devscape/internal/mood"
	"github.com/talgya/devscape/internal/world"
)

// DialogueTTL is how long an applied dialogue line stays on screen.
const DialogueTTL = 4 * time.Second

// applyDecision maps a validated decision onto world mutation: a bounded
// one-cell move, a timed dialogue line, and a mood transition. Moves that
// would leave the map or enter an impassable tile clamp to a no-op. Returns
// whether the companion actually moved.
func (e *Engine) applyDecision(d Decision, now time.Time) bool {
	moved := false
	if d.Direction != world.DirNone {
		dx, dy := d.Direction.Delta()
		next := e.pos.Add(dx, dy)
		if e.worldMap.Passable(next) {
			e.pos = next
			moved = true
		}
	}

	if d.Dialogue != "" {
		e.dialogue = d.Dialogue
		e.dialogueUntil = now.Add(DialogueTTL)
	}

	before := e.mood.Snapshot()
	after := e.mood.ApplyDelta(d.MoodDelta)
	e.noteMoodTransition(before, after, "decision")

	e.advanceTraits(d, after)

	e.rec.RecordAction(lineage.Action{
		ContributorID: e.contributorID,
		ActionType:    "decision",
		Details: lineage.Details{
			"direction":  d.Direction.String(),
			"dialogue":   d.Dialogue,
			"mood_delta": d.MoodDelta,
			"moved":      moved,
			"x":          e.pos.X,
			"y":          e.pos.Y,
		},
	})

	return moved
}

// noteMoodTransition records a lineage event when the mood category
// changes. Scalar-only drift is not archived; per-tick decay would flood
// the store with records nobody reads.
func (e *Engine) noteMoodTransition(before, after mood.Snapshot, cause string) {
	if before.Category == after.Category {
		return
	}
	e.rec.RecordEvent(lineage.Event{
		EventType:       "mood_transition",
		RelatedEntityID: e.contributorID,
		Details: lineage.Details{
			"from":  string(before.Category),
			"to":    string(after.Category),
			"value": after.Value,
			"cause": cause,
		},
	})
}

// advanceTraits grants trait progress for the interaction and archives any
// level-ups.
func (e *Engine) advanceTraits(d Decision, ms mood.Snapshot) {
	var ups []LevelUp
	if d.Dialogue != "" {
		ups = append(ups, e.traits.Advance(TraitEmpathy, empathyGain, ms)...)
	}
	if d.Direction != world.DirNone {
		ups = append(ups, e.traits.Advance(TraitCuriosity, curiosityGain, ms)...)
	}

	for _, up := range ups {
		e.rec.RecordTraitChange(lineage.TraitChange{
			TraitID:       up.Trait,
			ContributorID: e.contributorID,
			OldLevel:      up.OldLevel,
			NewLevel:      up.NewLevel,
			Details: lineage.Details{
				"mood":       string(ms.Category),
				"mood_value": ms.Value,
			},
		})
	}
}
