package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/talgya/devscape/internal/world"
)

var (
	styleGrass    = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	styleForest   = lipgloss.NewStyle().Foreground(lipgloss.Color("22"))
	styleRoad     = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	styleWater    = lipgloss.NewStyle().Foreground(lipgloss.Color("27"))
	styleMountain = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	stylePlayer    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	styleCompanion = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleMoodGlyph = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	styleChatPlayer    = lipgloss.NewStyle().Foreground(lipgloss.Color("83"))
	styleChatCompanion = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleHelp          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// terrainStyle returns the display style for a terrain type.
func terrainStyle(t world.Terrain) lipgloss.Style {
	switch t {
	case world.TerrainForest:
		return styleForest
	case world.TerrainRoad:
		return styleRoad
	case world.TerrainWater:
		return styleWater
	case world.TerrainMountain:
		return styleMountain
	}
	return styleGrass
}
