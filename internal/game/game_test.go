package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/devscape/internal/companion"
	"github.com/talgya/devscape/internal/lineage"
	"github.com/talgya/devscape/internal/llm"
	"github.com/talgya/devscape/internal/world"
)

// stubQuerier hands the engine a scripted completion for each query.
type stubQuerier struct {
	busy bool
	seq  uint64
	text string
}

func (s *stubQuerier) Busy() bool { return s.busy }

func (s *stubQuerier) Begin([]llm.Message) (uint64, bool) {
	if s.busy {
		return 0, false
	}
	s.busy = true
	s.seq++
	return s.seq, true
}

func (s *stubQuerier) Poll() (llm.Result, bool) {
	if !s.busy {
		return llm.Result{}, false
	}
	s.busy = false
	return llm.Result{Seq: s.seq, Text: s.text}, true
}

func (s *stubQuerier) Expire() { s.busy = false }

func (s *stubQuerier) BreakerState() llm.BreakerState { return llm.BreakerClosed }

type nopRecorder struct{}

func (nopRecorder) RecordAction(lineage.Action) {}

func (nopRecorder) RecordEvent(lineage.Event) {}

func (nopRecorder) RecordTraitChange(lineage.TraitChange) {}

func newTestGame(t *testing.T, q companion.ModelQuerier) *Game {
	t.Helper()
	m := world.NewMap(8, 8)
	eng := companion.New(m, world.Pos{X: 4, Y: 4}, q, nopRecorder{}, "companion:test")
	return New(m, eng, world.Pos{X: 2, Y: 2})
}

func TestMovePlayerClampsAtEdgesAndWater(t *testing.T) {
	g := newTestGame(t, &stubQuerier{})
	g.playerPos = world.Pos{X: 0, Y: 0}

	assert.False(t, g.MovePlayer(world.DirNorth), "cannot leave the map")
	assert.False(t, g.MovePlayer(world.DirWest))
	assert.Equal(t, world.Pos{X: 0, Y: 0}, g.PlayerPos())

	g.Map.Set(world.Pos{X: 1, Y: 0}, world.TerrainWater)
	assert.False(t, g.MovePlayer(world.DirEast), "water is impassable")

	assert.True(t, g.MovePlayer(world.DirSouth))
	assert.Equal(t, world.Pos{X: 0, Y: 1}, g.PlayerPos())
}

func TestSayFeedsChatAndCompanion(t *testing.T) {
	g := newTestGame(t, &stubQuerier{})

	g.Say("hello out there")

	log := g.ChatLog()
	require.Len(t, log, 1)
	assert.Equal(t, "Player", log[0].From)
	assert.Equal(t, "hello out there", log[0].Text)
}

func TestStepSurfacesCompanionDialogueOnce(t *testing.T) {
	q := &stubQuerier{text: "MOVE: none | SAY: hello friend"}
	g := newTestGame(t, q)

	now := time.Unix(1000, 0)
	g.Step(now) // Arms the decide interval.
	now = now.Add(companion.DecideInterval)
	g.Step(now) // Issues the query.
	now = now.Add(100 * time.Millisecond)
	g.Step(now) // Polls the result and applies the dialogue.

	var companionLines []ChatLine
	for _, line := range g.ChatLog() {
		if line.From == "Companion" {
			companionLines = append(companionLines, line)
		}
	}
	require.Len(t, companionLines, 1)
	assert.Equal(t, "hello friend", companionLines[0].Text)

	// Further ticks with the same dialogue showing must not duplicate it.
	g.Step(now.Add(50 * time.Millisecond))
	g.Step(now.Add(100 * time.Millisecond))
	count := 0
	for _, line := range g.ChatLog() {
		if line.From == "Companion" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestChatLogIsBounded(t *testing.T) {
	g := newTestGame(t, &stubQuerier{})

	for i := 0; i < MaxChatLog+20; i++ {
		g.Say(fmt.Sprintf("line %d", i))
	}

	log := g.ChatLog()
	require.Len(t, log, MaxChatLog)
	assert.Equal(t, fmt.Sprintf("line %d", 20), log[0].Text, "oldest lines dropped first")
	assert.Equal(t, fmt.Sprintf("line %d", MaxChatLog+19), log[len(log)-1].Text)
}

func TestLoopRunsBoundedTicks(t *testing.T) {
	g := newTestGame(t, &stubQuerier{})
	l := NewLoop(g)
	l.Interval = time.Millisecond

	var ticks []uint64
	l.OnTick = func(tick uint64) { ticks = append(ticks, tick) }

	l.Run(5)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ticks)
	assert.True(t, l.Running, "Run returned via maxTicks, not Stop")
}

func TestLoopStops(t *testing.T) {
	g := newTestGame(t, &stubQuerier{})
	l := NewLoop(g)
	l.Interval = time.Millisecond
	l.OnTick = func(tick uint64) {
		if tick >= 3 {
			l.Stop()
		}
	}

	done := make(chan struct{})
	go func() {
		l.Run(0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.False(t, l.Running)
}
