package companion

import (
	"errors"
	"time"

	"github.com/talgya/devscape/internal/lineage"
	"github.com/talgya/devscape/internal/llm"
	"github.com/talgya/devscape/internal/mood"
	"github.com/talgya/devscape/internal/world"
)

// Engine pacing constants.
const (
	// DecideInterval is the minimum time between model queries.
	DecideInterval = 3 * time.Second
	// PendingBudget is the total wall-clock allowance for one query
	// including retries; beyond it the request is expired and its late
	// result discarded.
	PendingBudget = 20 * time.Second
)

// ModelQuerier is the asynchronous query surface the engine drives.
// *llm.Querier implements it.
type ModelQuerier interface {
	Busy() bool
	Begin(messages []llm.Message) (seq uint64, started bool)
	Poll() (llm.Result, bool)
	Expire()
	BreakerState() llm.BreakerState
}

// Recorder is the lineage sink the engine reports to. *lineage.Recorder
// implements it; recording must never block the caller.
type Recorder interface {
	RecordAction(lineage.Action)
	RecordEvent(lineage.Event)
	RecordTraitChange(lineage.TraitChange)
}

// Engine owns one companion NPC: its position, mood, traits, dialogue, and
// the decision cycle that drives them from model completions. All methods
// must be called from the frame loop goroutine.
type Engine struct {
	worldMap *world.Map
	q        ModelQuerier
	rec      Recorder

	mood   *mood.State
	traits *TraitSet

	contributorID string

	pos           world.Pos
	dialogue      string
	dialogueUntil time.Time
	chat          []string

	lastStep     time.Time
	lastDecide   time.Time
	pendingSince time.Time
}

// New creates a companion engine at the spawn position. The contributor id
// is stamped into every lineage record this engine produces.
func New(m *world.Map, spawn world.Pos, q ModelQuerier, rec Recorder, contributorID string) *Engine {
	return &Engine{
		worldMap:      m,
		q:             q,
		rec:           rec,
		mood:          mood.New(),
		traits:        NewTraitSet(),
		contributorID: contributorID,
		pos:           spawn,
	}
}

// Step advances the companion by one frame tick. It never blocks: model
// queries run in the background and their results are polled here. While a
// query is pending the companion holds its prior action.
func (e *Engine) Step(now time.Time, player world.Pos) {
	if e.lastStep.IsZero() {
		e.lastStep = now
		// Delay the first query by one interval so the world settles.
		e.lastDecide = now
	}
	elapsed := now.Sub(e.lastStep)
	e.lastStep = now

	before := e.mood.Snapshot()
	after := e.mood.Decay(elapsed)
	e.noteMoodTransition(before, after, "decay")

	if e.dialogue != "" && now.After(e.dialogueUntil) {
		e.dialogue = ""
	}

	if res, ok := e.q.Poll(); ok {
		e.handleResult(res, now)
	}

	if e.q.Busy() && now.Sub(e.pendingSince) > PendingBudget {
		e.q.Expire()
		e.rec.RecordEvent(lineage.Event{
			EventType:       "query_expired",
			RelatedEntityID: e.contributorID,
		})
		e.applyFallback("expired")
	}

	if !e.q.Busy() && now.Sub(e.lastDecide) >= DecideInterval {
		snap := BuildSnapshot(e.worldMap, e.pos, player, e.chat, e.mood.Snapshot())
		if _, started := e.q.Begin(snap.Prompt()); started {
			e.pendingSince = now
			e.lastDecide = now
		}
	}
}

// handleResult processes one completed query: failure accounting, parsing,
// and application.
func (e *Engine) handleResult(res llm.Result, now time.Time) {
	for _, attemptErr := range res.Attempts {
		e.rec.RecordEvent(lineage.Event{
			EventType:       classifyQueryError(attemptErr),
			RelatedEntityID: e.contributorID,
			Details:         lineage.Details{"error": attemptErr.Error()},
		})
	}

	switch {
	case res.Fallback:
		e.applyFallback("circuit_open")
	case res.Err != nil:
		e.applyFallback("query_failed")
	default:
		d, err := ParseDecision(res.Text)
		if err != nil {
			// Degrade to idle: no dialogue, no mood change, no decision
			// row. Only the failure itself is archived.
			e.rec.RecordEvent(lineage.Event{
				EventType:       "parse_failure",
				RelatedEntityID: e.contributorID,
				Details:         lineage.Details{"raw": SanitizeDialogue(res.Text)},
			})
			return
		}
		e.applyDecision(d, now)
		if d.Dialogue != "" {
			e.pushChat("Companion: " + d.Dialogue)
		}
	}
}

// applyFallback is the scripted behavior under sustained failure: hold
// position, say nothing, leave mood untouched.
func (e *Engine) applyFallback(cause string) {
	e.rec.RecordEvent(lineage.Event{
		EventType:       "fallback_applied",
		RelatedEntityID: e.contributorID,
		Details:         lineage.Details{"cause": cause},
	})
}

func classifyQueryError(err error) string {
	switch {
	case errors.Is(err, llm.ErrQueryTimeout):
		return "query_timeout"
	case errors.Is(err, llm.ErrQueryUnavailable):
		return "query_unavailable"
	default:
		return "query_error"
	}
}

// PlayerSaid feeds a chat line from the player into the next snapshot.
func (e *Engine) PlayerSaid(line string) {
	e.pushChat("Player: " + line)
}

func (e *Engine) pushChat(line string) {
	e.chat = append(e.chat, line)
	if len(e.chat) > MaxChatLines {
		e.chat = e.chat[len(e.chat)-MaxChatLines:]
	}
}

// Pos returns the companion's current grid position.
func (e *Engine) Pos() world.Pos {
	return e.pos
}

// Dialogue returns the currently displayed line and its remaining display
// time. An empty line means nothing is showing.
func (e *Engine) Dialogue(now time.Time) (string, time.Duration) {
	if e.dialogue == "" || now.After(e.dialogueUntil) {
		return "", 0
	}
	return e.dialogue, e.dialogueUntil.Sub(now)
}

// Mood returns an immutable snapshot of the companion's mood.
func (e *Engine) Mood() mood.Snapshot {
	return e.mood.Snapshot()
}

// TraitLevels returns a copy of the companion's current trait levels.
func (e *Engine) TraitLevels() map[string]int {
	return e.traits.Levels()
}

// Thinking reports whether a model query is outstanding.
func (e *Engine) Thinking() bool {
	return e.q.Busy()
}

// BreakerState exposes the circuit state for status display.
func (e *Engine) BreakerState() llm.BreakerState {
	return e.q.BreakerState()
}
