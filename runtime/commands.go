package runtime

import "context"

// Command represents an action or intent handed to the app for handling.
type Command interface {
	Command()
}

// PostFunc sends a message into the app.
// It returns false when the message queue is full.
type PostFunc func(Message) bool

// Quit signals the application should exit.
type Quit struct{}

func (Quit) Command() {}

// SendMsg posts a message into the app loop.
type SendMsg struct {
	Message Message
}

func (SendMsg) Command() {}

// Send wraps a message in a SendMsg command.
func Send(msg Message) Command {
	return SendMsg{Message: msg}
}

// Submit indicates a form was submitted.
type Submit struct {
	Form string
}

func (Submit) Command() {}

// Cancel indicates an operation was abandoned by the user.
type Cancel struct{}

func (Cancel) Command() {}

// Effect runs work in a background goroutine.
// Use the provided context for shutdown and PostFunc to emit messages.
type Effect struct {
	Run func(ctx context.Context, post PostFunc)
}

func (Effect) Command() {}
