package sim

import (
	"context"
	"log"
	"time"

	"lifecast/internal/core"
)

// Advancer produces one generation per call.
type Advancer interface {
	Advance() core.Diff
}

// DiffSink receives every generation in the order it was produced.
type DiffSink interface {
	BroadcastDiff(core.Diff)
}

// Deps carries shared infrastructure used by the scheduler.
type Deps struct {
	Logger *log.Logger
	Clock  func() time.Time
}

// Scheduler drives Advance at a fixed period from a single goroutine and
// forwards each diff to the sink. Ticks that fall due while a step is still
// running are coalesced by the ticker, so two steps never overlap.
type Scheduler struct {
	engine Advancer
	sink   DiffSink
	period time.Duration
	deps   Deps
}

// NewScheduler builds a scheduler ticking every period.
func NewScheduler(engine Advancer, sink DiffSink, period time.Duration, deps Deps) *Scheduler {
	if period <= 0 {
		period = core.TickPeriod(core.DefaultTickSpeed)
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Scheduler{engine: engine, sink: sink, period: period, deps: deps}
}

// Period returns the interval between generations.
func (s *Scheduler) Period() time.Duration { return s.period }

// Step advances one generation and hands the diff to the sink.
func (s *Scheduler) Step() core.Diff {
	diff := s.engine.Advance()
	if s.sink != nil {
		s.sink.BroadcastDiff(diff)
	}
	return diff
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.deps.Logger.Printf("[tick] scheduler started period=%s", s.period)
	for {
		select {
		case <-ctx.Done():
			s.deps.Logger.Printf("[tick] scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			start := s.deps.Clock()
			diff := s.Step()
			if took := s.deps.Clock().Sub(start); took > s.period {
				s.deps.Logger.Printf("[tick] budget overrun: iteration=%d duration=%s budget=%s changes=%d",
					diff.Iteration, took, s.period, len(diff.Changes))
			}
		}
	}
}
