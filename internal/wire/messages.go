// Package wire defines the messages exchanged between the server and its
// viewers and the codecs that frame them.
package wire

import (
	"fmt"

	"lifecast/internal/core"
)

// Message types carried in the envelope's type field.
const (
	TypeInitPack        = "init_pack"
	TypeUpdatePack      = "update_pack"
	TypeCreatePattern   = "create_pattern"
	TypePatternRejected = "pattern_rejected"
)

// Cell is the wire form of core.Cell.
type Cell struct {
	State     uint8 `json:"state" msgpack:"state"`
	HeatCount int   `json:"heatCount" msgpack:"heatCount"`
}

// Dimensions is the wire form of core.Dimensions.
type Dimensions struct {
	Cols       int `json:"cols" msgpack:"cols"`
	Rows       int `json:"rows" msgpack:"rows"`
	GameWidth  int `json:"gameWidth" msgpack:"gameWidth"`
	GameHeight int `json:"gameHeight" msgpack:"gameHeight"`
}

// InitPack is sent once to every new connection.
type InitPack struct {
	CurrentGen          [][]Cell   `json:"currentGen" msgpack:"currentGen"`
	CurrentIteration    int        `json:"currentIteration" msgpack:"currentIteration"`
	Dimensions          Dimensions `json:"dimensions" msgpack:"dimensions"`
	CellSize            int        `json:"cellSize" msgpack:"cellSize"`
	TickSpeedMultiplier int        `json:"tickSpeedMultiplier" msgpack:"tickSpeedMultiplier"`
}

// CellUpdate is one applied write within an UpdatePack.
type CellUpdate struct {
	Row       int   `json:"row" msgpack:"row"`
	Col       int   `json:"col" msgpack:"col"`
	State     uint8 `json:"state" msgpack:"state"`
	HeatCount int   `json:"heatCount" msgpack:"heatCount"`
}

// UpdatePack carries one generation's diff to every subscriber.
type UpdatePack struct {
	CurrentIteration int          `json:"currentIteration" msgpack:"currentIteration"`
	NextGen          []CellUpdate `json:"nextGen" msgpack:"nextGen"`
}

// CreatePattern is a viewer's request to inject a 5x5 mask. Fields are
// decoded loosely: a mask cell of the wrong type is a no-op rather than a
// decode failure, and shape and offset problems are reported by the
// gateway with their own rejection reasons.
type CreatePattern struct {
	Pattern   any `json:"pattern" msgpack:"pattern"`
	OffsetRow any `json:"offsetRow" msgpack:"offsetRow"`
	OffsetCol any `json:"offsetCol" msgpack:"offsetCol"`
}

// PatternRejected tells the submitting viewer why its pattern was dropped.
type PatternRejected struct {
	Reason string `json:"reason" msgpack:"reason"`
	Detail string `json:"detail,omitempty" msgpack:"detail,omitempty"`
}

// NewInitPack converts a snapshot into its wire form.
func NewInitPack(s core.Snapshot) InitPack {
	gen := make([][]Cell, len(s.Cells))
	for r, row := range s.Cells {
		out := make([]Cell, len(row))
		for c, cell := range row {
			out[c] = Cell{State: cell.State, HeatCount: cell.HeatCount}
		}
		gen[r] = out
	}
	return InitPack{
		CurrentGen:          gen,
		CurrentIteration:    s.Iteration,
		Dimensions:          Dimensions(s.Dimensions),
		CellSize:            s.CellSize,
		TickSpeedMultiplier: s.TickSpeedMultiplier,
	}
}

// Grid rebuilds the cell matrix described by the pack.
func (p InitPack) Grid() (*core.Grid, error) {
	if len(p.CurrentGen) != p.Dimensions.Rows {
		return nil, fmt.Errorf("init pack has %d rows, dimensions say %d", len(p.CurrentGen), p.Dimensions.Rows)
	}
	cells := make([][]core.Cell, len(p.CurrentGen))
	for r, row := range p.CurrentGen {
		if len(row) != p.Dimensions.Cols {
			return nil, fmt.Errorf("init pack row %d has %d columns, dimensions say %d", r, len(row), p.Dimensions.Cols)
		}
		out := make([]core.Cell, len(row))
		for c, cell := range row {
			out[c] = core.Cell{State: cell.State, HeatCount: cell.HeatCount}
		}
		cells[r] = out
	}
	return core.GridFromCells(p.CellSize, cells)
}

// NewUpdatePack converts a diff into its wire form. NextGen is never nil.
func NewUpdatePack(d core.Diff) UpdatePack {
	next := make([]CellUpdate, len(d.Changes))
	for i, ch := range d.Changes {
		next[i] = CellUpdate{Row: ch.Row, Col: ch.Col, State: ch.State, HeatCount: ch.HeatCount}
	}
	return UpdatePack{CurrentIteration: d.Iteration, NextGen: next}
}

// NewCreatePattern builds a request placing mask with its top-left corner at
// (offsetRow, offsetCol).
func NewCreatePattern(mask [5][5]uint8, offsetRow, offsetCol int) CreatePattern {
	pattern := make([][]int, len(mask))
	for i, row := range mask {
		pattern[i] = make([]int, len(row))
		for j, v := range row {
			pattern[i][j] = int(v)
		}
	}
	return CreatePattern{Pattern: pattern, OffsetRow: offsetRow, OffsetCol: offsetCol}
}
