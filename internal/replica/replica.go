// Package replica rebuilds the server's grid on the viewer side from one
// init_pack followed by every update_pack in order.
package replica

import (
	"errors"
	"fmt"
	"sync"

	"lifecast/internal/core"
	"lifecast/internal/wire"
)

var (
	// ErrOutOfOrder is returned when an update does not directly follow the
	// replica's current iteration.
	ErrOutOfOrder = errors.New("update out of order")
	// ErrHeatMismatch means a replayed write disagrees with the server's heat
	// count, so the replica has diverged.
	ErrHeatMismatch = errors.New("heat count mismatch")
)

// Replica is a local copy of the grid. It is safe for concurrent use.
type Replica struct {
	mu        sync.RWMutex
	grid      *core.Grid
	iteration int
	tickSpeed int
}

// New builds a replica from an init pack.
func New(p wire.InitPack) (*Replica, error) {
	grid, err := p.Grid()
	if err != nil {
		return nil, fmt.Errorf("replica: %w", err)
	}
	return &Replica{grid: grid, iteration: p.CurrentIteration, tickSpeed: p.TickSpeedMultiplier}, nil
}

// Apply replays one update pack. Packs must arrive with consecutive
// iterations; on error the replica is left unchanged up to the failing entry
// and should be rebuilt from a fresh snapshot.
func (r *Replica) Apply(p wire.UpdatePack) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CurrentIteration != r.iteration+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrOutOfOrder, r.iteration, p.CurrentIteration)
	}
	for _, u := range p.NextGen {
		cell, err := r.grid.Set(u.Row, u.Col, u.State)
		if err != nil {
			return fmt.Errorf("replica: %w", err)
		}
		if cell.HeatCount != u.HeatCount {
			return fmt.Errorf("%w at (%d,%d): have %d, server %d", ErrHeatMismatch, u.Row, u.Col, cell.HeatCount, u.HeatCount)
		}
	}
	r.iteration = p.CurrentIteration
	return nil
}

// Iteration returns the last applied generation.
func (r *Replica) Iteration() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.iteration
}

// TickSpeed returns the server's generations-per-second multiplier.
func (r *Replica) TickSpeed() int { return r.tickSpeed }

// CellSize returns the rendered cell size in pixels.
func (r *Replica) CellSize() int { return r.grid.CellSize() }

// Dimensions returns the grid geometry.
func (r *Replica) Dimensions() core.Dimensions { return r.grid.Dimensions() }

// CopyCells copies the row-major cells into dst, growing it if needed, and
// returns it.
func (r *Replica) CopyCells(dst []core.Cell) []core.Cell {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.grid.Cells()
	if cap(dst) < len(src) {
		dst = make([]core.Cell, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

// Digest returns the iteration and grid digest read under one lock.
func (r *Replica) Digest() (int, [32]byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.iteration, r.grid.Digest()
}

// Population counts live cells.
func (r *Replica) Population() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grid.Population()
}
