package app

import "sort"

// Mask is a 5x5 pattern stamp; 1 marks a cell to bring to life.
type Mask = [5][5]uint8

var patterns = map[string]Mask{
	"glider": {
		{0, 1, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{1, 1, 1, 0, 0},
	},
	"blinker": {
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
	},
	"block": {
		{0, 0, 0, 0, 0},
		{0, 1, 1, 0, 0},
		{0, 1, 1, 0, 0},
	},
	"toad": {
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{1, 1, 1, 0, 0},
	},
	"r-pentomino": {
		{0, 0, 0, 0, 0},
		{0, 0, 1, 1, 0},
		{0, 1, 1, 0, 0},
		{0, 0, 1, 0, 0},
	},
	"lwss": {
		{0, 1, 0, 0, 1},
		{1, 0, 0, 0, 0},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 0},
	},
}

// PatternNames returns the library's pattern names in sorted order.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pattern looks up a named mask.
func Pattern(name string) (Mask, bool) {
	m, ok := patterns[name]
	return m, ok
}

// cyclePattern returns the name delta steps away from current in the sorted
// library, wrapping at both ends. An unknown current starts from the first.
func cyclePattern(current string, delta int) string {
	names := PatternNames()
	idx := sort.SearchStrings(names, current)
	if idx >= len(names) || names[idx] != current {
		idx = 0
		if delta > 0 {
			delta--
		}
	}
	n := len(names)
	return names[((idx+delta)%n+n)%n]
}

// placement converts a cursor position in pixels to the top-left offset of
// a mask centred on the cell under the cursor. ok is false when the cursor
// is outside the rows*cols grid. Offsets may be negative; the server clips
// whatever falls off the grid.
func placement(cursorX, cursorY, cellPx, rows, cols int) (row, col int, ok bool) {
	if cellPx <= 0 || cursorX < 0 || cursorY < 0 {
		return 0, 0, false
	}
	r, c := cursorY/cellPx, cursorX/cellPx
	if r >= rows || c >= cols {
		return 0, 0, false
	}
	return r - 2, c - 2, true
}
