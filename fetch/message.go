package fetch

import (
	"context"

	"github.com/odvcencio/furrykit/runtime"
)

// SettledMsg is posted to the host loop when an effect-driven execution ends.
type SettledMsg[T any] struct {
	Result Result[T]
}

func (SettledMsg[T]) Message() {}

// ExecuteEffect runs Execute as a runtime effect and posts a SettledMsg.
func (r *Request[T]) ExecuteEffect(opts Options) runtime.Effect {
	return runtime.Task(func(ctx context.Context) runtime.Message {
		return SettledMsg[T]{Result: r.Execute(ctx, opts)}
	})
}
