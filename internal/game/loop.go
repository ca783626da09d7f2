// Headless frame loop for soak runs without a terminal UI.
package game

import (
	"log/slog"
	"time"
)

// DefaultTickInterval is the frame rate of the cooperative loop.
const DefaultTickInterval = 200 * time.Millisecond

// Loop drives the game forward at a fixed tick rate. Rendering, input, and
// state mutation all happen on the loop goroutine; the only asynchronous
// work is the companion's background model query.
type Loop struct {
	Game     *Game
	Interval time.Duration
	Running  bool

	// OnTick, if set, runs after each game step (status output, stats).
	OnTick func(tick uint64)
}

// NewLoop creates a loop over the game with the default tick interval.
func NewLoop(g *Game) *Loop {
	return &Loop{
		Game:     g,
		Interval: DefaultTickInterval,
	}
}

// Run steps the game until Stop is called or maxTicks is reached
// (0 = unbounded). Blocks the calling goroutine.
func (l *Loop) Run(maxTicks uint64) {
	l.Running = true
	slog.Info("frame loop started", "interval", l.Interval)

	var tick uint64
	for l.Running {
		start := time.Now()

		tick++
		l.Game.Step(start)
		if l.OnTick != nil {
			l.OnTick(tick)
		}

		if maxTicks > 0 && tick >= maxTicks {
			break
		}

		// Sleep for the remainder of the tick interval.
		elapsed := time.Since(start)
		if elapsed < l.Interval {
			time.Sleep(l.Interval - elapsed)
		}
	}

	slog.Info("frame loop stopped", "ticks", tick)
}

// Stop halts the loop after the current tick.
func (l *Loop) Stop() {
	l.Running = false
}
