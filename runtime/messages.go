package runtime

import "time"

// Message represents an event flowing into the host loop.
// Messages come from input sources, timers, or background effects.
type Message interface {
	Message()
}

// ResizeMsg indicates the display size changed.
type ResizeMsg struct {
	Width  int
	Height int
}

func (ResizeMsg) Message() {}

// TickMsg is sent on each loop tick.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) Message() {}

// QueueFlushMsg triggers a state queue flush in the update loop.
type QueueFlushMsg struct{}

func (QueueFlushMsg) Message() {}

// InvalidateMsg requests a render pass.
type InvalidateMsg struct{}

func (InvalidateMsg) Message() {}

// QuitMsg stops the loop from outside the loop goroutine.
type QuitMsg struct{}

func (QuitMsg) Message() {}
