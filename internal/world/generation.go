// World generation using layered simplex noise.
// Generates elevation and moisture maps, then derives terrain per tile.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width       int     // Map width in tiles
	Height      int     // Map height in tiles
	Seed        int64   // Random seed (0 = random)
	WaterLvl    float64 // Elevation threshold for water (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns the standard game map configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:       20,
		Height:      15,
		Seed:        0,
		WaterLvl:    0.30,
		MountainLvl: 0.78,
	}
}

// Generate creates a complete tile map from the configuration.
// Deterministic for a fixed non-zero seed.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Width, cfg.Height)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.12, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.09, 0.5)

			// Pull elevation up toward the center so the playfield is
			// mostly land with water pooling near the edges.
			cx := fx/float64(cfg.Width) - 0.5
			cy := fy/float64(cfg.Height) - 0.5
			distFromCenter := 2 * math.Sqrt(cx*cx+cy*cy)
			elev *= 1.0 - 0.6*math.Pow(distFromCenter, 2)

			m.Set(Pos{X: x, Y: y}, deriveTerrain(elev, moist, cfg))
		}
	}

	carveRoad(m, seed)
	ensureSpawnArea(m)

	return m
}

// deriveTerrain maps elevation and moisture onto a terrain type.
func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.WaterLvl:
		return TerrainWater
	case elev > cfg.MountainLvl:
		return TerrainMountain
	case moist > 0.62:
		return TerrainForest
	default:
		return TerrainGrass
	}
}

// carveRoad lays a single horizontal road across the midline, bridging
// nothing: water and mountain tiles interrupt it.
func carveRoad(m *Map, seed int64) {
	rng := rand.New(rand.NewSource(seed + 7))
	y := m.Height / 2
	for x := 0; x < m.Width; x++ {
		// Meander by at most one row.
		if rng.Intn(4) == 0 {
			y += rng.Intn(3) - 1
			if y < 1 {
				y = 1
			}
			if y > m.Height-2 {
				y = m.Height - 2
			}
		}
		p := Pos{X: x, Y: y}
		if m.At(p) == TerrainGrass || m.At(p) == TerrainForest {
			m.Set(p, TerrainRoad)
		}
	}
}

// ensureSpawnArea clears a 3x3 grass patch at the map center so the player
// and companion always spawn on passable ground.
func ensureSpawnArea(m *Map) {
	center := Pos{X: m.Width / 2, Y: m.Height / 2}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			p := center.Add(dx, dy)
			if m.InBounds(p) && !m.At(p).Passable() {
				m.Set(p, TerrainGrass)
			}
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
