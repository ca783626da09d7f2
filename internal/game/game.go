// Package game composes the map, the player, and the companion engine into
// one steppable world.
package game

import (
	"time"

	"github.com/talgya/devscape/internal/companion"
	"github.com/talgya/devscape/internal/world"
)

// MaxChatLog bounds the on-screen chat history.
const MaxChatLog = 50

// ChatLine is one displayed chat entry.
type ChatLine struct {
	From string
	Text string
}

// Game holds the complete interactive world state. It is owned by the frame
// loop goroutine; nothing here is safe for concurrent use.
type Game struct {
	Map       *world.Map
	Companion *companion.Engine

	playerPos    world.Pos
	chatLog      []ChatLine
	lastDialogue string
}

// New creates a game with the player at the given spawn.
func New(m *world.Map, eng *companion.Engine, playerSpawn world.Pos) *Game {
	return &Game{
		Map:       m,
		Companion: eng,
		playerPos: playerSpawn,
	}
}

// Step advances the world by one frame tick.
func (g *Game) Step(now time.Time) {
	g.Companion.Step(now, g.playerPos)

	// Surface fresh companion dialogue into the chat log once.
	if line, _ := g.Companion.Dialogue(now); line != "" && line != g.lastDialogue {
		g.lastDialogue = line
		g.appendChat(ChatLine{From: "Companion", Text: line})
	}
}

// MovePlayer attempts a one-cell move, clamped by map passability.
// Returns whether the player moved.
func (g *Game) MovePlayer(d world.Direction) bool {
	dx, dy := d.Delta()
	next := g.playerPos.Add(dx, dy)
	if !g.Map.Passable(next) {
		return false
	}
	g.playerPos = next
	return true
}

// PlayerPos returns the player's current position.
func (g *Game) PlayerPos() world.Pos {
	return g.playerPos
}

// Say records a player chat line and feeds it to the companion's next
// snapshot.
func (g *Game) Say(line string) {
	g.appendChat(ChatLine{From: "Player", Text: line})
	g.Companion.PlayerSaid(line)
}

// ChatLog returns the displayed chat history, oldest first.
func (g *Game) ChatLog() []ChatLine {
	return g.chatLog
}

func (g *Game) appendChat(line ChatLine) {
	g.chatLog = append(g.chatLog, line)
	if len(g.chatLog) > MaxChatLog {
		g.chatLog = g.chatLog[len(g.chatLog)-MaxChatLog:]
	}
}
