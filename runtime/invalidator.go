package runtime

// Invalidator requests render passes, coalescing requests made before the
// loop handles the pending InvalidateMsg.
type Invalidator struct {
	wake wakeup
}

// NewInvalidator creates an invalidator wired to a post function.
func NewInvalidator(post func(Message) bool) *Invalidator {
	return &Invalidator{wake: wakeup{post: post, msg: InvalidateMsg{}}}
}

// Invalidate requests a render pass.
func (i *Invalidator) Invalidate() {
	if i == nil {
		return
	}
	i.wake.signal()
}

// Schedule runs fn immediately, then requests a render pass. It lets state
// changes that only affect output skip the state queue.
func (i *Invalidator) Schedule(fn func()) {
	if fn == nil {
		return
	}
	fn()
	i.Invalidate()
}

func (i *Invalidator) resetPending() {
	if i == nil {
		return
	}
	i.wake.reset()
}
