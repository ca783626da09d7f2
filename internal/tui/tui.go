// Package tui provides the Bubble Tea terminal UI for devscape: the tile
// grid, the companion's dialogue bubble and mood overlay, and the chat
// input. The UI drives the frame loop via tick messages, so all game state
// mutation stays on the Bubble Tea goroutine.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/talgya/devscape/internal/game"
	"github.com/talgya/devscape/internal/world"
)

// frameInterval is the UI frame tick rate.
const frameInterval = 100 * time.Millisecond

// tickMsg carries a frame tick into Update.
type tickMsg time.Time

// Model is the Bubble Tea model wrapping the game.
type Model struct {
	game  *game.Game
	input textinput.Model

	width    int
	height   int
	quitting bool
}

// New creates a TUI model wired to the given game.
func New(g *game.Game) Model {
	ti := textinput.New()
	ti.Prompt = "say> "
	ti.Placeholder = "type to chat, arrows to move"
	ti.CharLimit = 200
	ti.Focus()

	return Model{
		game:  g,
		input: ti,
	}
}

// Run starts the Bubble Tea program and blocks until quit.
func Run(g *game.Game) error {
	p := tea.NewProgram(New(g), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init schedules the first frame tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, frameTick())
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses, window sizing, and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.game.Step(time.Time(msg))
		return m, frameTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up":
			m.game.MovePlayer(world.DirNorth)
			return m, nil
		case "down":
			m.game.MovePlayer(world.DirSouth)
			return m, nil
		case "left":
			m.game.MovePlayer(world.DirWest)
			return m, nil
		case "right":
			m.game.MovePlayer(world.DirEast)
			return m, nil

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				m.game.Say(line)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
