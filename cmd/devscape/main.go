// Command devscape runs the grid game with the LLM-driven companion.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/talgya/devscape/internal/companion"
	"github.com/talgya/devscape/internal/config"
	"github.com/talgya/devscape/internal/game"
	"github.com/talgya/devscape/internal/lineage"
	"github.com/talgya/devscape/internal/llm"
	"github.com/talgya/devscape/internal/tui"
	"github.com/talgya/devscape/internal/world"
)

func main() {
	headless := flag.Uint64("headless", 0, "run N ticks without a UI, then exit")
	flag.Parse()

	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// ── Lineage archive ───────────────────────────────────────────────
	store, err := lineage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open lineage archive", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	rec := lineage.NewRecorder(store)
	defer rec.Close()

	// ── World ─────────────────────────────────────────────────────────
	genCfg := world.DefaultGenConfig()
	genCfg.Seed = cfg.Seed
	worldMap := world.Generate(genCfg)

	for t, c := range world.TerrainCounts(worldMap) {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}

	// ── Companion engine ──────────────────────────────────────────────
	sessionID := uuid.New().String()
	client := llm.NewClient(cfg.OllamaURL, cfg.Model)
	querier := llm.NewQuerier(client)

	center := world.Pos{X: worldMap.Width / 2, Y: worldMap.Height / 2}
	compSpawn := center.Add(1, 0)
	if !worldMap.Passable(compSpawn) {
		compSpawn = center
	}

	eng := companion.New(worldMap, compSpawn, querier, rec, "companion:"+sessionID)
	g := game.New(worldMap, eng, center)

	rec.RecordEvent(lineage.Event{
		EventType:       "session_start",
		RelatedEntityID: sessionID,
		Details:         lineage.Details{"model": cfg.Model, "seed": genCfg.Seed},
	})

	slog.Info("devscape starting",
		"model", cfg.Model,
		"ollama", cfg.OllamaURL,
		"session", sessionID,
		"map", fmt.Sprintf("%dx%d", worldMap.Width, worldMap.Height),
	)

	if *headless > 0 {
		loop := game.NewLoop(g)
		loop.OnTick = func(tick uint64) {
			if tick%50 == 0 {
				ms := eng.Mood()
				slog.Info("tick", "n", tick,
					"companion", eng.Pos(), "mood", ms.Category,
					"dropped_records", rec.Dropped())
			}
		}
		loop.Run(*headless)
		return
	}

	if err := tui.Run(g); err != nil {
		slog.Error("ui error", "error", err)
		os.Exit(1)
	}
}
