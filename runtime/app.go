// Package runtime hosts reactive state in a single-goroutine message loop.
//
// Background work runs as Effects and reports back by posting Messages. State
// callbacks scheduled through the app's StateScheduler are flushed on the loop
// goroutine, so request and form state observed by Render is never written
// concurrently with a render pass.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/odvcencio/furrykit/state"
)

// UpdateFunc handles a message and returns true if a render is needed.
type UpdateFunc func(app *App, msg Message) bool

// CommandHandler handles commands the app does not handle itself.
// Return true if the command requires a render.
type CommandHandler func(cmd Command) bool

// RenderFunc draws the current state. It runs on the loop goroutine.
type RenderFunc func()

// AppConfig configures a runtime App.
type AppConfig struct {
	Update         UpdateFunc
	CommandHandler CommandHandler
	Render         RenderFunc
	MessageBuffer  int
	TickRate       time.Duration
	StateQueue     *state.Queue
	FlushPolicy    QueueFlushPolicy
	Logger         *zerolog.Logger
}

// App runs an update/render loop fed by posted messages.
type App struct {
	update         UpdateFunc
	commandHandler CommandHandler
	render         RenderFunc
	messages       chan Message
	tickRate       time.Duration
	stateQueue     *state.Queue
	queueScheduler *QueueScheduler
	flushPolicy    QueueFlushPolicy
	invalidator    *Invalidator
	logger         zerolog.Logger
	taskCtx        context.Context
	taskCancel     context.CancelFunc
	tasks          sync.WaitGroup
	pendingMu      sync.Mutex
	pendingEffects []Effect

	running bool
	dirty   bool
}

// NewApp creates a new App from config.
func NewApp(cfg AppConfig) *App {
	bufferSize := cfg.MessageBuffer
	if bufferSize <= 0 {
		bufferSize = 128
	}
	queue := cfg.StateQueue
	if queue == nil {
		queue = state.NewQueue()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	app := &App{
		update:         cfg.Update,
		commandHandler: cfg.CommandHandler,
		render:         cfg.Render,
		messages:       make(chan Message, bufferSize),
		tickRate:       cfg.TickRate,
		stateQueue:     queue,
		flushPolicy:    cfg.FlushPolicy,
		logger:         logger.With().Str("component", "runtime").Logger(),
	}
	app.queueScheduler = NewQueueScheduler(queue, app.tryPost)
	app.invalidator = NewInvalidator(app.tryPost)
	return app
}

// StateQueue returns the app's state queue.
func (a *App) StateQueue() *state.Queue {
	if a == nil {
		return nil
	}
	return a.stateQueue
}

// StateScheduler returns a scheduler that wakes the app to flush.
func (a *App) StateScheduler() state.Scheduler {
	if a == nil || a.queueScheduler == nil {
		return nil
	}
	return a.queueScheduler
}

// InvalidateScheduler returns a scheduler that invalidates the render pass.
func (a *App) InvalidateScheduler() state.Scheduler {
	if a == nil || a.invalidator == nil {
		return nil
	}
	return a.invalidator
}

// Invalidate requests a render pass.
func (a *App) Invalidate() {
	if a == nil || a.invalidator == nil {
		return
	}
	a.invalidator.Invalidate()
}

// PostQueueFlush requests a state queue flush.
func (a *App) PostQueueFlush() {
	a.Post(QueueFlushMsg{})
}

// Spawn starts an effect using the app task context.
// If Run has not started, the effect is queued until start.
func (a *App) Spawn(effect Effect) {
	if a == nil || effect.Run == nil {
		return
	}
	a.pendingMu.Lock()
	if a.taskCtx == nil {
		a.pendingEffects = append(a.pendingEffects, effect)
		a.pendingMu.Unlock()
		return
	}
	a.pendingMu.Unlock()
	a.runEffect(effect)
}

// After schedules a delayed message using the app task context.
func (a *App) After(delay time.Duration, msg Message) {
	a.Spawn(After(delay, msg))
}

// Every schedules a recurring message using the app task context.
func (a *App) Every(interval time.Duration, fn func(time.Time) Message) {
	a.Spawn(Every(interval, fn))
}

// Post sends a message to the event loop, dropping it if the buffer is full.
func (a *App) Post(msg Message) {
	if !a.tryPost(msg) {
		a.logger.Warn().Str("message", fmt.Sprintf("%T", msg)).Msg("message dropped, buffer full")
	}
}

// TryPost sends a message to the event loop without blocking.
func (a *App) TryPost(msg Message) bool {
	return a.tryPost(msg)
}

// Stop asks a running loop to exit.
func (a *App) Stop() {
	a.Post(QuitMsg{})
}

func (a *App) tryPost(msg Message) bool {
	if a == nil || a.messages == nil || msg == nil {
		return false
	}
	select {
	case a.messages <- msg:
		return true
	default:
		return false
	}
}

// Run starts the event loop until quit or context cancellation.
// Running effects are cancelled and awaited before Run returns.
func (a *App) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	taskCtx, taskCancel := context.WithCancel(ctx)
	a.pendingMu.Lock()
	a.taskCtx = taskCtx
	a.taskCancel = taskCancel
	a.pendingMu.Unlock()
	defer func() {
		taskCancel()
		a.tasks.Wait()
		a.pendingMu.Lock()
		a.taskCtx = nil
		a.taskCancel = nil
		a.pendingMu.Unlock()
	}()

	if a.update == nil {
		a.update = DefaultUpdate
	}

	a.running = true
	a.dirty = true
	a.logger.Debug().Dur("tick_rate", a.tickRate).Msg("loop started")

	a.startPendingEffects()

	var ticks <-chan time.Time
	if a.tickRate > 0 {
		ticker := time.NewTicker(a.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for a.running {
		if a.dirty {
			a.draw()
			a.dirty = false
		}

		var msg Message
		select {
		case <-ctx.Done():
			a.running = false
			a.cancelTasks()
			continue
		case msg = <-a.messages:
		case now := <-ticks:
			msg = TickMsg{Time: now}
		}

		if _, ok := msg.(QuitMsg); ok {
			a.handleCommand(Quit{})
			continue
		}
		if a.update(a, msg) {
			a.dirty = true
		}
		if !a.running {
			continue
		}
		if a.flushQueueIfNeeded(msg) {
			a.dirty = true
		}
		if _, ok := msg.(InvalidateMsg); ok && a.invalidator != nil {
			a.invalidator.resetPending()
		}
	}

	a.logger.Debug().Msg("loop stopped")
	return ctx.Err()
}

// DefaultUpdate renders on invalidation and ignores everything else.
func DefaultUpdate(app *App, msg Message) bool {
	switch msg.(type) {
	case InvalidateMsg, ResizeMsg:
		return true
	default:
		return false
	}
}

func (a *App) handleCommand(cmd Command) bool {
	switch c := cmd.(type) {
	case Quit:
		a.running = false
		a.cancelTasks()
		return false
	case SendMsg:
		if c.Message != nil {
			a.Post(c.Message)
		}
		return false
	case Effect:
		a.runEffect(c)
		return false
	default:
		if a.commandHandler != nil {
			return a.commandHandler(cmd)
		}
		return false
	}
}

// ExecuteCommand runs a command through the app handler.
// It must be called from the loop goroutine, typically inside an UpdateFunc.
func (a *App) ExecuteCommand(cmd Command) bool {
	if a == nil || cmd == nil {
		return false
	}
	return a.handleCommand(cmd)
}

func (a *App) draw() {
	if a.render != nil {
		a.render()
	}
}

func (a *App) taskContext() context.Context {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	if a.taskCtx != nil {
		return a.taskCtx
	}
	return context.Background()
}

func (a *App) cancelTasks() {
	if a == nil {
		return
	}
	a.pendingMu.Lock()
	cancel := a.taskCancel
	a.pendingMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (a *App) runEffect(effect Effect) {
	if a == nil || effect.Run == nil {
		return
	}
	ctx := a.taskContext()
	a.tasks.Add(1)
	go func() {
		defer a.tasks.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error().Interface("panic", r).Msg("effect panicked")
			}
		}()
		effect.Run(ctx, a.tryPost)
	}()
}

func (a *App) startPendingEffects() {
	if a == nil {
		return
	}
	a.pendingMu.Lock()
	effects := a.pendingEffects
	a.pendingEffects = nil
	a.pendingMu.Unlock()
	for _, effect := range effects {
		a.runEffect(effect)
	}
}

func (a *App) flushQueueIfNeeded(msg Message) bool {
	if a == nil || a.stateQueue == nil {
		return false
	}
	if !shouldFlushQueue(a.flushPolicy, msg) {
		return false
	}
	if a.queueScheduler != nil {
		a.queueScheduler.resetPending()
	}
	return a.stateQueue.Flush() > 0
}
