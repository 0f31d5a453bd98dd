package runtime

import "github.com/odvcencio/furrykit/state"

// QueueScheduler defers callbacks to the loop goroutine. Scheduling appends
// to a state.Queue and posts a single QueueFlushMsg until the loop flushes.
type QueueScheduler struct {
	queue *state.Queue
	wake  wakeup
}

// NewQueueScheduler wires a queue to a post function. A nil queue gets a
// fresh one.
func NewQueueScheduler(queue *state.Queue, post func(Message) bool) *QueueScheduler {
	if queue == nil {
		queue = state.NewQueue()
	}
	return &QueueScheduler{
		queue: queue,
		wake:  wakeup{post: post, msg: QueueFlushMsg{}},
	}
}

// Schedule enqueues fn and wakes the loop.
func (s *QueueScheduler) Schedule(fn func()) {
	if s == nil || s.queue == nil || fn == nil {
		return
	}
	s.queue.Schedule(fn)
	s.wake.signal()
}

func (s *QueueScheduler) resetPending() {
	if s == nil {
		return
	}
	s.wake.reset()
}
