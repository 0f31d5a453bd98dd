package state

import (
	"sync"

	"github.com/eapache/queue"
)

// Scheduler dispatches subscription callbacks.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(func())

// Schedule dispatches fn using the wrapped function.
func (f SchedulerFunc) Schedule(fn func()) {
	if f == nil || fn == nil {
		return
	}
	f(fn)
}

// DirectScheduler runs callbacks immediately in the caller goroutine.
var DirectScheduler Scheduler = SchedulerFunc(func(fn func()) {
	if fn != nil {
		fn()
	}
})

// AsyncScheduler runs callbacks in a new goroutine.
type AsyncScheduler struct{}

// Schedule dispatches fn asynchronously.
func (AsyncScheduler) Schedule(fn func()) {
	if fn == nil {
		return
	}
	go fn()
}

// Queue batches callbacks for explicit flushing.
// Callbacks scheduled while a flush is running wait for the next flush.
type Queue struct {
	mu      sync.Mutex
	pending *queue.Queue
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: queue.New()}
}

// Schedule enqueues a callback for later flushing.
func (q *Queue) Schedule(fn func()) {
	if q == nil || fn == nil {
		return
	}
	q.mu.Lock()
	if q.pending == nil {
		q.pending = queue.New()
	}
	q.pending.Add(fn)
	q.mu.Unlock()
}

// Len reports the number of callbacks waiting for a flush.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return 0
	}
	return q.pending.Length()
}

// Flush executes queued callbacks in FIFO order and returns the count.
func (q *Queue) Flush() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	if q.pending == nil || q.pending.Length() == 0 {
		q.mu.Unlock()
		return 0
	}
	batch := make([]func(), 0, q.pending.Length())
	for q.pending.Length() > 0 {
		batch = append(batch, q.pending.Remove().(func()))
	}
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
