package runtime

import "sync/atomic"

// wakeup posts one message and suppresses further posts until the loop
// handles it and calls reset.
type wakeup struct {
	post    func(Message) bool
	msg     Message
	pending atomic.Bool
}

// signal posts the wake message unless one is already in flight. A rejected
// post leaves the wakeup armed so the next signal retries.
func (w *wakeup) signal() {
	if w.post == nil {
		return
	}
	if !w.pending.CompareAndSwap(false, true) {
		return
	}
	if !w.post(w.msg) {
		w.pending.Store(false)
	}
}

func (w *wakeup) reset() {
	w.pending.Store(false)
}
