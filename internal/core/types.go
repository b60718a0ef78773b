package core

// Dimensions describes the fixed geometry of the grid.
type Dimensions struct {
	Cols       int
	Rows       int
	GameWidth  int
	GameHeight int
}

// Injection is one externally requested cell override, produced by
// decomposing a pattern and consumed by the next generation.
type Injection struct {
	Col   int
	Row   int
	State uint8
}

// Change records one applied write and the cell's heat count after it.
type Change struct {
	Row       int
	Col       int
	State     uint8
	HeatCount int
}

// Diff is the ordered list of writes applied by one generation.
type Diff struct {
	Iteration int
	Changes   []Change
}

// Snapshot is a full copy of the grid plus the metadata a new viewer needs.
type Snapshot struct {
	Cells               [][]Cell
	Iteration           int
	Dimensions          Dimensions
	CellSize            int
	TickSpeedMultiplier int
}
