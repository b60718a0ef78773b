package core

import (
	"encoding/binary"
	"errors"
	"fmt"

	"lukechampine.com/blake3"
)

// ErrOutOfRange reports a cell access outside the grid bounds.
var ErrOutOfRange = errors.New("cell out of range")

const (
	// Dead is the state of an empty cell.
	Dead uint8 = 0
	// Alive is the state of a live cell.
	Alive uint8 = 1
)

// Cell is a single grid position. HeatCount counts every applied write.
type Cell struct {
	State     uint8
	HeatCount int
}

// Grid stores rows*cols cells in row-major order. Its dimensions are fixed at
// construction and there is no wraparound.
type Grid struct {
	rows, cols int
	cellSize   int
	data       []Cell
}

// NewGrid allocates an all-dead grid with the given dimensions.
func NewGrid(rows, cols, cellSize int) *Grid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{rows: rows, cols: cols, cellSize: cellSize, data: make([]Cell, rows*cols)}
}

// NewGridFunc allocates a grid whose initial states come from fn. Heat counts
// start at zero.
func NewGridFunc(rows, cols, cellSize int, fn func(row, col int) uint8) *Grid {
	g := NewGrid(rows, cols, cellSize)
	if fn == nil {
		return g
	}
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			g.data[g.Index(r, c)].State = fn(r, c)
		}
	}
	return g
}

// GridFromCells rebuilds a grid from a full cell matrix such as a snapshot.
// Every row must have the same length.
func GridFromCells(cellSize int, cells [][]Cell) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("empty cell matrix")
	}
	g := NewGrid(len(cells), len(cells[0]), cellSize)
	for r, row := range cells {
		if len(row) != g.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", r, len(row), g.cols)
		}
		copy(g.data[r*g.cols:(r+1)*g.cols], row)
	}
	return g, nil
}

// Dimensions returns the fixed spatial configuration of the grid.
func (g *Grid) Dimensions() Dimensions {
	return Dimensions{
		Cols:       g.cols,
		Rows:       g.rows,
		GameWidth:  g.cols * g.cellSize,
		GameHeight: g.rows * g.cellSize,
	}
}

// CellSize returns the rendered size of one cell.
func (g *Grid) CellSize() int { return g.cellSize }

// Index returns the linear slice index for (row, col).
func (g *Grid) Index(row, col int) int { return row*g.cols + col }

// InBounds reports whether (row, col) names an existing cell.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Get returns the cell at (row, col).
func (g *Grid) Get(row, col int) (Cell, error) {
	if !g.InBounds(row, col) {
		return Cell{}, fmt.Errorf("get (%d,%d) on %dx%d grid: %w", row, col, g.rows, g.cols, ErrOutOfRange)
	}
	return g.data[g.Index(row, col)], nil
}

// Set writes state into (row, col), increments its heat count and returns the
// updated cell.
func (g *Grid) Set(row, col int, state uint8) (Cell, error) {
	if !g.InBounds(row, col) {
		return Cell{}, fmt.Errorf("set (%d,%d) on %dx%d grid: %w", row, col, g.rows, g.cols, ErrOutOfRange)
	}
	cell := &g.data[g.Index(row, col)]
	cell.State = state
	cell.HeatCount++
	return *cell, nil
}

// Alive reports whether (row, col) is live. Cells outside the grid are dead.
func (g *Grid) Alive(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.data[g.Index(row, col)].State == Alive
}

// LiveNeighbors counts live cells in the Moore neighbourhood of (row, col)
// that lie within the grid.
func (g *Grid) LiveNeighbors(row, col int) int {
	n := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if g.Alive(row+dr, col+dc) {
				n++
			}
		}
	}
	return n
}

// Matrix returns a copy of the cells as rows of columns.
func (g *Grid) Matrix() [][]Cell {
	out := make([][]Cell, g.rows)
	for r := range out {
		row := make([]Cell, g.cols)
		copy(row, g.data[r*g.cols:(r+1)*g.cols])
		out[r] = row
	}
	return out
}

// Cells exposes the backing slice in row-major order for read-only callers.
func (g *Grid) Cells() []Cell { return g.data }

// Population counts live cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.data {
		if c.State == Alive {
			n++
		}
	}
	return n
}

// Digest hashes the dimensions, states and heat counts of every cell. Two
// grids with equal digests are identical for all practical purposes.
func (g *Grid) Digest() [32]byte {
	buf := make([]byte, 8, 8+len(g.data)*5)
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.rows))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.cols))
	var heat [4]byte
	for _, c := range g.data {
		buf = append(buf, c.State)
		binary.LittleEndian.PutUint32(heat[:], uint32(c.HeatCount))
		buf = append(buf, heat[:]...)
	}
	return blake3.Sum256(buf)
}
