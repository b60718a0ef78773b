package sim

import (
	"fmt"
	"sync"

	"lifecast/internal/core"
)

// Engine owns the authoritative grid and the injection queue. Advance is the
// only mutation path; Snapshot may be called from any goroutine.
type Engine struct {
	advanceMu sync.Mutex // serializes Advance so the grid has a single writer

	mu        sync.RWMutex // guards grid writes and iteration against Snapshot
	grid      *core.Grid
	iteration int

	queue     *Queue
	tickSpeed int
}

// New wraps grid in an Engine. The engine takes ownership of the grid.
func New(grid *core.Grid, tickSpeed int) *Engine {
	if tickSpeed <= 0 {
		tickSpeed = core.DefaultTickSpeed
	}
	return &Engine{grid: grid, queue: NewQueue(), tickSpeed: tickSpeed}
}

// Queue returns the engine's injection queue.
func (e *Engine) Queue() *Queue { return e.queue }

// TickSpeed returns the configured generations-per-second multiplier.
func (e *Engine) TickSpeed() int { return e.tickSpeed }

// Dimensions returns the grid geometry, which never changes.
func (e *Engine) Dimensions() core.Dimensions { return e.grid.Dimensions() }

// Advance computes the next generation and returns the writes it applied.
//
// Rule-derived changes come first in row-major order, followed by every
// queued injection in submission order, so an injection overrides the rule
// for the same cell. All entries are applied in that order; each write bumps
// the cell's heat count.
func (e *Engine) Advance() core.Diff {
	e.advanceMu.Lock()
	defer e.advanceMu.Unlock()

	changes := e.ruleChanges()
	for _, inj := range e.queue.DrainAll() {
		changes = append(changes, core.Change{Row: inj.Row, Col: inj.Col, State: inj.State})
	}

	e.mu.Lock()
	for i := range changes {
		cell, err := e.grid.Set(changes[i].Row, changes[i].Col, changes[i].State)
		if err != nil {
			e.mu.Unlock()
			panic(fmt.Sprintf("sim: corrupted change list at iteration %d: %v", e.iteration, err))
		}
		changes[i].HeatCount = cell.HeatCount
	}
	e.iteration++
	iteration := e.iteration
	e.mu.Unlock()

	return core.Diff{Iteration: iteration, Changes: changes}
}

// ruleChanges lists the cells whose state flips under B3/S23. Only the
// advancing goroutine writes the grid, so reading here needs no lock.
func (e *Engine) ruleChanges() []core.Change {
	dims := e.grid.Dimensions()
	changes := make([]core.Change, 0)
	for row := 0; row < dims.Rows; row++ {
		for col := 0; col < dims.Cols; col++ {
			neighbors := e.grid.LiveNeighbors(row, col)
			alive := e.grid.Alive(row, col)
			switch {
			case alive && (neighbors < 2 || neighbors > 3):
				changes = append(changes, core.Change{Row: row, Col: col, State: core.Dead})
			case !alive && neighbors == 3:
				changes = append(changes, core.Change{Row: row, Col: col, State: core.Alive})
			}
		}
	}
	return changes
}

// Snapshot returns a deep copy of the grid and its metadata. It never
// observes a partially applied generation.
func (e *Engine) Snapshot() core.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return core.Snapshot{
		Cells:               e.grid.Matrix(),
		Iteration:           e.iteration,
		Dimensions:          e.grid.Dimensions(),
		CellSize:            e.grid.CellSize(),
		TickSpeedMultiplier: e.tickSpeed,
	}
}

// Iteration returns the number of generations advanced so far.
func (e *Engine) Iteration() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.iteration
}

// Digest returns the iteration and the grid digest read under one lock.
func (e *Engine) Digest() (int, [32]byte) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.iteration, e.grid.Digest()
}

// Population counts live cells.
func (e *Engine) Population() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Population()
}
