package sim

import (
	"sync"

	"lifecast/internal/core"
)

// Queue buffers pattern injections between generations. Any number of
// goroutines may enqueue; only the tick driver drains.
type Queue struct {
	mu      sync.Mutex // protects pending between producers and the tick driver
	pending []core.Injection
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends the injections as one contiguous batch. Batches from
// different callers keep their arrival order.
func (q *Queue) Enqueue(injections ...core.Injection) {
	if len(injections) == 0 {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, injections...)
	q.mu.Unlock()
}

// DrainAll empties the queue and returns its contents in submission order.
func (q *Queue) DrainAll() []core.Injection {
	q.mu.Lock()
	drained := q.pending
	q.pending = nil
	q.mu.Unlock()
	return drained
}

// Len reports the number of pending injections.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
