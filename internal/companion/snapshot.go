// Package companion implements the AI companion decision engine: snapshot
// building, asynchronous model queries, response parsing, mood, decision
// application, and lineage recording.
package companion

import (
	"fmt"
	"strings"

	"github.com/talgya/devscape/internal/llm"
	"github.com/talgya/devscape/internal/mood"
	"github.com/talgya/devscape/internal/world"
)

// Snapshot bounds.
const (
	// MaxChatLines is how many recent chat lines a snapshot carries.
	MaxChatLines = 6
	// MaxPromptLen caps the rendered user prompt; oldest chat lines are
	// dropped first to fit.
	MaxPromptLen = 2000
)

const systemPrompt = `You are a companion character in a simple 2D grid-based game. You move around the map, stay near the player, and chat with them. Keep your replies short and in character.

Respond in exactly this format:
MOVE: <north, south, east, west, or none> | SAY: <one short line, under 15 words> | MOOD: <a whole number between -5 and +5 describing how this moment shifts your mood>`

// Snapshot is an immutable, bounded view of world state at the moment a
// query is issued. Built fresh for each query and not retained.
type Snapshot struct {
	NPC      world.Pos
	Player   world.Pos
	MapW     int
	MapH     int
	Chat     []string // Oldest first, at most MaxChatLines
	Mood     mood.Snapshot
	PathHint world.Direction // Next step along the shortest path to the player
}

// BuildSnapshot condenses current world state into a snapshot. Pure: no
// side effects, and the chat slice is copied.
func BuildSnapshot(m *world.Map, npc, player world.Pos, chat []string, ms mood.Snapshot) Snapshot {
	if len(chat) > MaxChatLines {
		chat = chat[len(chat)-MaxChatLines:]
	}
	copied := make([]string, len(chat))
	copy(copied, chat)

	return Snapshot{
		NPC:      npc,
		Player:   player,
		MapW:     m.Width,
		MapH:     m.Height,
		Chat:     copied,
		Mood:     ms,
		PathHint: world.NextStepToward(m, npc, player),
	}
}

// Prompt renders the snapshot into the chat messages sent to the model.
func (s Snapshot) Prompt() []llm.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "You are at (%d, %d) on a %dx%d map. ", s.NPC.X, s.NPC.Y, s.MapW, s.MapH)
	fmt.Fprintf(&b, "The player is %s. ", relativePosition(s.NPC, s.Player))
	fmt.Fprintf(&b, "Your current mood is %s (%d/100).\n", s.Mood.Category, int(s.Mood.Value))

	if s.PathHint != world.DirNone {
		fmt.Fprintf(&b, "A path to the player exists; the next optimal step is %s.\n", s.PathHint)
	} else if s.NPC == s.Player {
		b.WriteString("You are at the player's location.\n")
	} else {
		b.WriteString("No direct path to the player is currently available.\n")
	}

	chat := s.Chat
	for {
		rendered := renderChat(chat)
		if b.Len()+len(rendered) <= MaxPromptLen || len(chat) == 0 {
			b.WriteString(rendered)
			break
		}
		chat = chat[1:] // FIFO truncation: oldest lines go first.
	}

	b.WriteString("\nWhat is your next move and what do you say?")

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func renderChat(chat []string) string {
	if len(chat) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent chat:\n")
	for _, line := range chat {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// relativePosition expresses where b stands relative to a in direction
// words, e.g. "2 cells east and 1 cell north of you".
func relativePosition(a, b world.Pos) string {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return "right here with you"
	}

	var parts []string
	if dx > 0 {
		parts = append(parts, fmt.Sprintf("%s east", cells(dx)))
	} else if dx < 0 {
		parts = append(parts, fmt.Sprintf("%s west", cells(-dx)))
	}
	if dy > 0 {
		parts = append(parts, fmt.Sprintf("%s south", cells(dy)))
	} else if dy < 0 {
		parts = append(parts, fmt.Sprintf("%s north", cells(-dy)))
	}

	return strings.Join(parts, " and ") + " of you"
}

func cells(n int) string {
	if n == 1 {
		return "1 cell"
	}
	return fmt.Sprintf("%d cells", n)
}
