// Package world provides the tile grid, terrain, and spatial data structures.
// Uses simple cartesian coordinates (x right, y down) for the square grid.
package world

import "fmt"

// Pos represents a position on the tile grid.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p offset by dx, dy.
func (p Pos) Add(dx, dy int) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy}
}

// Manhattan returns the Manhattan distance between two positions.
func Manhattan(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Direction is a one-cell movement on the grid.
type Direction uint8

const (
	DirNone  Direction = iota // Hold position
	DirNorth                  // y - 1
	DirSouth                  // y + 1
	DirEast                   // x + 1
	DirWest                   // x - 1
)

// Delta returns the grid offset for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirNorth:
		return 0, -1
	case DirSouth:
		return 0, 1
	case DirEast:
		return 1, 0
	case DirWest:
		return -1, 0
	}
	return 0, 0
}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "north"
	case DirSouth:
		return "south"
	case DirEast:
		return "east"
	case DirWest:
		return "west"
	}
	return "none"
}

// Toward returns the direction of the single step that most reduces the
// distance from a to b, preferring the axis with the larger gap.
func Toward(a, b Pos) Direction {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return DirNone
	}
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			return DirEast
		}
		return DirWest
	}
	if dy > 0 {
		return DirSouth
	}
	return DirNorth
}

// Terrain types for grid tiles.
type Terrain uint8

const (
	TerrainGrass    Terrain = iota // Open ground, always passable
	TerrainForest                  // Passable, slows nothing (flavor only)
	TerrainRoad                    // Passable
	TerrainWater                   // Impassable
	TerrainMountain                // Impassable
)

// Passable reports whether the terrain can be walked on.
func (t Terrain) Passable() bool {
	return t != TerrainWater && t != TerrainMountain
}

// Rune returns the single-character map legend symbol for the terrain.
func (t Terrain) Rune() rune {
	switch t {
	case TerrainGrass:
		return '.'
	case TerrainForest:
		return 'F'
	case TerrainRoad:
		return '='
	case TerrainWater:
		return 'W'
	case TerrainMountain:
		return 'M'
	}
	return '?'
}

// TerrainName returns the human-readable terrain name.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainGrass:
		return "Grass"
	case TerrainForest:
		return "Forest"
	case TerrainRoad:
		return "Road"
	case TerrainWater:
		return "Water"
	case TerrainMountain:
		return "Mountain"
	}
	return "Unknown"
}

// Map holds the complete tile grid.
type Map struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Tiles  []Terrain `json:"-"` // Row-major, len = Width*Height
}

// NewMap creates an all-grass map with the given dimensions.
func NewMap(width, height int) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Tiles:  make([]Terrain, width*height),
	}
}

// InBounds reports whether the position lies on the map.
func (m *Map) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// At returns the terrain at p. Out-of-bounds positions read as water so
// callers treat the map edge as impassable.
func (m *Map) At(p Pos) Terrain {
	if !m.InBounds(p) {
		return TerrainWater
	}
	return m.Tiles[p.Y*m.Width+p.X]
}

// Set places terrain at p. Out-of-bounds writes are ignored.
func (m *Map) Set(p Pos, t Terrain) {
	if !m.InBounds(p) {
		return
	}
	m.Tiles[p.Y*m.Width+p.X] = t
}

// Passable reports whether p is on the map and walkable.
func (m *Map) Passable(p Pos) bool {
	return m.InBounds(p) && m.At(p).Passable()
}

// Rows renders the map as legend strings, one per row.
func (m *Map) Rows() []string {
	rows := make([]string, m.Height)
	for y := 0; y < m.Height; y++ {
		line := make([]rune, m.Width)
		for x := 0; x < m.Width; x++ {
			line[x] = m.At(Pos{X: x, Y: y}).Rune()
		}
		rows[y] = string(line)
	}
	return rows
}

// ParseRows builds a map from legend strings, the inverse of Rows.
// Unknown symbols become grass. All rows must share one width.
func ParseRows(rows []string) (*Map, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty map")
	}
	width := len(rows[0])
	m := NewMap(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d: width %d, want %d", y, len(row), width)
		}
		for x, ch := range row {
			var t Terrain
			switch ch {
			case 'F':
				t = TerrainForest
			case '=':
				t = TerrainRoad
			case 'W':
				t = TerrainWater
			case 'M':
				t = TerrainMountain
			default:
				t = TerrainGrass
			}
			m.Set(Pos{X: x, Y: y}, t)
		}
	}
	return m, nil
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.Tiles {
		counts[t]++
	}
	return counts
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
