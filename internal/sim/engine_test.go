package sim

import (
	"testing"

	"lifecast/internal/core"
)

func engineWith(rows, cols int, alive ...[2]int) *Engine {
	set := make(map[[2]int]bool, len(alive))
	for _, rc := range alive {
		set[rc] = true
	}
	grid := core.NewGridFunc(rows, cols, 20, func(r, c int) uint8 {
		if set[[2]int{r, c}] {
			return core.Alive
		}
		return core.Dead
	})
	return New(grid, 2)
}

func expectAlive(t *testing.T, e *Engine, label string, alive ...[2]int) {
	t.Helper()
	want := make(map[[2]int]bool, len(alive))
	for _, rc := range alive {
		want[rc] = true
	}
	snap := e.Snapshot()
	for r, row := range snap.Cells {
		for c, cell := range row {
			isAlive := cell.State == core.Alive
			if isAlive != want[[2]int{r, c}] {
				t.Fatalf("%s: cell (%d,%d) alive=%v, expected %v", label, r, c, isAlive, want[[2]int{r, c}])
			}
		}
	}
}

func TestBlinkerOscillation(t *testing.T) {
	e := engineWith(5, 5, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})

	diff := e.Advance()
	if diff.Iteration != 1 {
		t.Fatalf("iteration = %d, want 1", diff.Iteration)
	}
	expectAlive(t, e, "after first advance", [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2})
	if len(diff.Changes) != 4 {
		t.Fatalf("blinker flip should change 4 cells, got %d", len(diff.Changes))
	}

	e.Advance()
	expectAlive(t, e, "after second advance", [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})
}

func TestBlockIsStill(t *testing.T) {
	block := [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}}
	e := engineWith(6, 6, block...)
	for i := 0; i < 10; i++ {
		diff := e.Advance()
		if len(diff.Changes) != 0 {
			t.Fatalf("advance %d produced %d changes for a still life", i, len(diff.Changes))
		}
	}
	expectAlive(t, e, "block", block...)
	if e.Iteration() != 10 {
		t.Fatalf("iteration = %d, want 10", e.Iteration())
	}
}

func TestCornerCellsHaveNoWraparound(t *testing.T) {
	// Three live corners would give (0,0) three neighbours on a torus.
	e := engineWith(4, 4, [2]int{3, 3}, [2]int{0, 3}, [2]int{3, 0})
	e.Advance()
	expectAlive(t, e, "corners")
}

func TestAdvanceDeterministic(t *testing.T) {
	build := func() *Engine {
		grid := core.NewGridFunc(32, 32, 20, core.RandomStates(core.NewRNG(99)))
		e := New(grid, 2)
		e.Queue().Enqueue(core.Injection{Row: 4, Col: 5, State: core.Alive}, core.Injection{Row: 0, Col: 0, State: core.Alive})
		return e
	}
	a, b := build(), build()
	for i := 0; i < 5; i++ {
		da, db := a.Advance(), b.Advance()
		if len(da.Changes) != len(db.Changes) {
			t.Fatalf("step %d: change counts %d vs %d", i, len(da.Changes), len(db.Changes))
		}
		for j := range da.Changes {
			if da.Changes[j] != db.Changes[j] {
				t.Fatalf("step %d change %d: %+v vs %+v", i, j, da.Changes[j], db.Changes[j])
			}
		}
	}
	_, digestA := a.Digest()
	_, digestB := b.Digest()
	if digestA != digestB {
		t.Fatal("grids diverged")
	}
}

func TestUnlistedCellsUnchanged(t *testing.T) {
	e := New(core.NewGridFunc(24, 24, 20, core.RandomStates(core.NewRNG(5))), 2)
	for step := 0; step < 5; step++ {
		before := e.Snapshot()
		diff := e.Advance()
		after := e.Snapshot()
		touched := make(map[[2]int]bool, len(diff.Changes))
		for _, ch := range diff.Changes {
			touched[[2]int{ch.Row, ch.Col}] = true
			if before.Cells[ch.Row][ch.Col].State == ch.State {
				t.Fatalf("rule change at (%d,%d) does not change state", ch.Row, ch.Col)
			}
		}
		for r := range after.Cells {
			for c := range after.Cells[r] {
				if touched[[2]int{r, c}] {
					continue
				}
				if after.Cells[r][c] != before.Cells[r][c] {
					t.Fatalf("step %d: unlisted cell (%d,%d) changed from %+v to %+v", step, r, c, before.Cells[r][c], after.Cells[r][c])
				}
			}
		}
	}
}

func TestInjectionOverridesRule(t *testing.T) {
	// (2,1) is an end of a horizontal blinker and dies by rule.
	e := engineWith(5, 5, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})
	e.Queue().Enqueue(core.Injection{Row: 2, Col: 1, State: core.Alive})

	diff := e.Advance()

	var entries []core.Change
	for _, ch := range diff.Changes {
		if ch.Row == 2 && ch.Col == 1 {
			entries = append(entries, ch)
		}
	}
	if len(entries) != 2 {
		t.Fatalf("expected rule entry and injection entry for (2,1), got %+v", entries)
	}
	if entries[0].State != core.Dead || entries[1].State != core.Alive {
		t.Fatalf("expected rule death then injection birth, got %+v", entries)
	}
	if entries[1].HeatCount != entries[0].HeatCount+1 {
		t.Fatalf("heat should increment per applied entry: %+v", entries)
	}
	if last := diff.Changes[len(diff.Changes)-1]; last.Row != 2 || last.Col != 1 {
		t.Fatalf("injections must be appended after rule changes, last entry %+v", last)
	}
	cell := e.Snapshot().Cells[2][1]
	if cell.State != core.Alive {
		t.Fatalf("injected cell state = %d, want alive", cell.State)
	}
}

func TestInjectionsAppliedInSubmissionOrder(t *testing.T) {
	e := engineWith(5, 5)
	e.Queue().Enqueue(core.Injection{Row: 1, Col: 1, State: core.Alive})
	e.Queue().Enqueue(core.Injection{Row: 1, Col: 1, State: core.Dead})

	diff := e.Advance()
	if len(diff.Changes) != 2 {
		t.Fatalf("changes = %+v, want two injection entries", diff.Changes)
	}
	if diff.Changes[1].HeatCount != 2 {
		t.Fatalf("second write heat = %d, want 2", diff.Changes[1].HeatCount)
	}
	if e.Snapshot().Cells[1][1].State != core.Dead {
		t.Fatal("last injection must win")
	}
	if e.Queue().Len() != 0 {
		t.Fatal("queue must be empty after advance")
	}
}

func TestClippedPatternScenario(t *testing.T) {
	e := engineWith(80, 80)
	gw := NewGateway(e.Queue(), e.Dimensions())
	mask := emptyMask()
	mask[2][2] = 1

	before := e.Snapshot().Cells[0][0].HeatCount
	injections, err := gw.Submit(Submission{Pattern: mask, OffsetRow: ptr(-2), OffsetCol: ptr(-2)})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(injections) != 1 || injections[0].Row != 0 || injections[0].Col != 0 {
		t.Fatalf("injections = %+v, want single (0,0)", injections)
	}

	e.Advance()
	cell := e.Snapshot().Cells[0][0]
	if cell.State != core.Alive {
		t.Fatal("(0,0) should be alive after the injection")
	}
	if cell.HeatCount != before+1 {
		t.Fatalf("heat = %d, want %d", cell.HeatCount, before+1)
	}
}

func TestReplayMatchesEngine(t *testing.T) {
	e := New(core.NewGridFunc(30, 40, 20, core.RandomStates(core.NewRNG(11))), 2)
	snap := e.Snapshot()
	replica, err := core.GridFromCells(snap.CellSize, snap.Cells)
	if err != nil {
		t.Fatalf("GridFromCells: %v", err)
	}
	gw := NewGateway(e.Queue(), e.Dimensions())
	glider := emptyMask()
	glider[0][1], glider[1][2], glider[2][0], glider[2][1], glider[2][2] = 1, 1, 1, 1, 1

	for step := 0; step < 20; step++ {
		if step%4 == 0 {
			if _, err := gw.Submit(Submission{Pattern: glider, OffsetRow: ptr(float64(step)), OffsetCol: ptr(float64(step * 2))}); err != nil {
				t.Fatalf("Submit: %v", err)
			}
		}
		diff := e.Advance()
		for _, ch := range diff.Changes {
			cell, err := replica.Set(ch.Row, ch.Col, ch.State)
			if err != nil {
				t.Fatalf("replay: %v", err)
			}
			if cell.HeatCount != ch.HeatCount {
				t.Fatalf("replayed heat %d, diff says %d", cell.HeatCount, ch.HeatCount)
			}
		}
	}
	if _, digest := e.Digest(); digest != replica.Digest() {
		t.Fatal("replica diverged from engine")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := engineWith(3, 3, [2]int{1, 1})
	snap := e.Snapshot()
	snap.Cells[1][1].State = core.Dead
	if e.Snapshot().Cells[1][1].State != core.Alive {
		t.Fatal("mutating a snapshot must not affect the engine")
	}
	if snap.TickSpeedMultiplier != 2 || snap.CellSize != 20 {
		t.Fatalf("snapshot metadata = %+v", snap)
	}
}
