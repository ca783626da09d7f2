package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/talgya/devscape/internal/world"
)

const (
	chatLines    = 8
	bubbleWidth  = 44
	sidebarWidth = 48
)

// View renders the full frame: status bar, grid beside the chat sidebar,
// and the input line.
func (m Model) View() string {
	if m.quitting {
		return "farewell\n"
	}

	now := time.Now()

	var b strings.Builder
	b.WriteString(m.renderStatusBar())
	b.WriteByte('\n')

	grid := m.renderGrid()
	sidebar := m.renderSidebar(now)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", sidebar))

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(styleHelp.Render("arrows: move · enter: chat · esc: quit"))

	return b.String()
}

// renderStatusBar shows position, mood, and engine status.
func (m Model) renderStatusBar() string {
	p := m.game.PlayerPos()
	ms := m.game.Companion.Mood()

	status := fmt.Sprintf("devscape · player (%d,%d) · companion mood: %s (%d/100)",
		p.X, p.Y, ms.Category, int(ms.Value))
	if m.game.Companion.Thinking() {
		status += " · thinking…"
	}
	if bs := m.game.Companion.BreakerState(); bs.String() != "closed" {
		status += " · llm circuit " + bs.String()
	}
	return styleStatusBar.Render(status)
}

// renderGrid draws the tile map with the player and companion overlaid,
// plus the companion's mood glyph on the cell above it.
func (m Model) renderGrid() string {
	wm := m.game.Map
	player := m.game.PlayerPos()
	comp := m.game.Companion.Pos()
	glyphPos := comp.Add(0, -1)
	glyph := m.game.Companion.Mood().Category.Glyph()

	var b strings.Builder
	for y := 0; y < wm.Height; y++ {
		for x := 0; x < wm.Width; x++ {
			pos := world.Pos{X: x, Y: y}
			cell := ""
			switch {
			case pos == player:
				cell = stylePlayer.Render("@")
			case pos == comp:
				cell = styleCompanion.Render("C")
			case pos == glyphPos && wm.InBounds(glyphPos):
				cell = styleMoodGlyph.Render(glyph)
			default:
				t := wm.At(pos)
				cell = terrainStyle(t).Render(string(t.Rune()))
			}
			b.WriteString(cell)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSidebar shows the dialogue bubble and recent chat.
func (m Model) renderSidebar(now time.Time) string {
	var parts []string

	if line, ttl := m.game.Companion.Dialogue(now); line != "" {
		bubble := wordwrap.String(line, bubbleWidth)
		bubble += fmt.Sprintf("\n%s", styleHelp.Render(fmt.Sprintf("(%.0fs)", ttl.Seconds())))
		parts = append(parts, styleDialogue.Render(bubble))
	}

	log := m.game.ChatLog()
	if len(log) > chatLines {
		log = log[len(log)-chatLines:]
	}
	for _, entry := range log {
		style := styleChatPlayer
		if entry.From == "Companion" {
			style = styleChatCompanion
		}
		wrapped := wordwrap.String(entry.From+": "+entry.Text, sidebarWidth)
		parts = append(parts, style.Render(wrapped))
	}

	return lipgloss.NewStyle().Width(sidebarWidth).Render(strings.Join(parts, "\n"))
}
