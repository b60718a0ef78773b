package sim

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"lifecast/internal/core"
)

type recordingSink struct {
	mu    sync.Mutex
	diffs []core.Diff
}

func (r *recordingSink) BroadcastDiff(d core.Diff) {
	r.mu.Lock()
	r.diffs = append(r.diffs, d)
	r.mu.Unlock()
}

func (r *recordingSink) iterations() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.diffs))
	for i, d := range r.diffs {
		out[i] = d.Iteration
	}
	return out
}

func TestSchedulerStepForwardsDiff(t *testing.T) {
	e := engineWith(5, 5, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})
	sink := &recordingSink{}
	s := NewScheduler(e, sink, time.Second, Deps{Logger: log.New(&bytes.Buffer{}, "", 0)})

	diff := s.Step()
	if diff.Iteration != 1 {
		t.Fatalf("iteration = %d, want 1", diff.Iteration)
	}
	if got := sink.iterations(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("sink saw %v, want [1]", got)
	}
}

func TestSchedulerRunsInOrderUntilCancelled(t *testing.T) {
	e := engineWith(8, 8)
	sink := &recordingSink{}
	s := NewScheduler(e, sink, 5*time.Millisecond, Deps{Logger: log.New(&bytes.Buffer{}, "", 0)})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(sink.iterations()) < 5 {
		select {
		case <-deadline:
			t.Fatalf("scheduler produced %d diffs", len(sink.iterations()))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	for i, it := range sink.iterations() {
		if it != i+1 {
			t.Fatalf("diff %d has iteration %d", i, it)
		}
	}
}

type slowAdvancer struct {
	mu       sync.Mutex
	inFlight int
	overlap  bool
	calls    int
}

func (s *slowAdvancer) Advance() core.Diff {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > 1 {
		s.overlap = true
	}
	s.calls++
	n := s.calls
	s.mu.Unlock()

	time.Sleep(15 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return core.Diff{Iteration: n}
}

func TestSchedulerNeverOverlaps(t *testing.T) {
	adv := &slowAdvancer{}
	var logs bytes.Buffer
	s := NewScheduler(adv, nil, 2*time.Millisecond, Deps{Logger: log.New(&logs, "", 0)})

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	adv.mu.Lock()
	defer adv.mu.Unlock()
	if adv.overlap {
		t.Fatal("advance calls overlapped")
	}
	if adv.calls == 0 {
		t.Fatal("scheduler never advanced")
	}
	if !bytes.Contains(logs.Bytes(), []byte("budget overrun")) {
		t.Fatal("expected a budget overrun log line")
	}
}
