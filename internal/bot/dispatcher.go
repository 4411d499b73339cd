package bot

// dispatcher.go serializes update handling.
//
// Updates from the poller or the webhook are queued and handled by a single
// goroutine in arrival order, so one chat's replies never interleave. When
// the queue is full, Enqueue waits up to maxWait before failing with
// ErrQueueFull.
//
// WaitForDrain blocks until every queued update has been handled, for
// graceful shutdown.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
)

// ErrQueueFull is returned when the queue stays full for maxWait.
var ErrQueueFull = errors.New("too many pending updates, please try again later")

// DefaultQueueSize is the default number of updates that may wait.
const DefaultQueueSize = 100

// DefaultMaxWaitTime is how long Enqueue waits for space before rejecting.
const DefaultMaxWaitTime = 5 * time.Second

// MessageHandler handles one message. *Handler implements it.
type MessageHandler interface {
	Handle(ctx context.Context, m Message) error
}

// Dispatcher feeds queued messages to a MessageHandler one at a time.
type Dispatcher struct {
	handler MessageHandler
	queue   chan Message
	maxWait time.Duration

	mu      sync.RWMutex
	pending int
}

// NewDispatcher creates a dispatcher holding at most queueSize waiting messages.
func NewDispatcher(handler MessageHandler, queueSize int, maxWait time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &Dispatcher{
		handler: handler,
		queue:   make(chan Message, queueSize),
		maxWait: maxWait,
	}
}

// Enqueue adds m to the queue.
// Returns nil on success, ErrQueueFull if no space frees up within maxWait.
func (d *Dispatcher) Enqueue(ctx context.Context, m Message) error {
	d.mu.Lock()
	d.pending++
	d.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, d.maxWait)
	defer cancel()

	select {
	case d.queue <- m:
		return nil

	case <-waitCtx.Done():
		d.done()
		// Check if original context was cancelled vs timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrQueueFull
	}
}

// Run handles queued messages until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	logging.FromContext(ctx).Info("dispatcher started", "queue_size", cap(d.queue))

	for {
		select {
		case <-ctx.Done():
			logging.FromContext(ctx).Info("dispatcher stopped", "pending", d.Pending())
			return nil
		case m := <-d.queue:
			d.process(ctx, m)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, m Message) {
	defer d.done()

	ctx, logger := logging.WithFields(ctx, "update_id", m.UpdateID, "chat_id", m.ChatID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("update handler panicked", "panic", fmt.Sprint(r))
		}
	}()

	if err := d.handler.Handle(ctx, m); err != nil {
		logger.Error("update failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Debug("update handled", "voice", m.IsVoice(), "command", m.Command, "duration_ms", time.Since(start).Milliseconds())
}

func (d *Dispatcher) done() {
	d.mu.Lock()
	d.pending--
	d.mu.Unlock()
}

// Pending returns the number of queued or in-flight messages.
func (d *Dispatcher) Pending() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pending
}

// WaitForDrain blocks until all pending messages are handled or ctx is cancelled.
// Stop intake first; Run must still be running.
func (d *Dispatcher) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if d.Pending() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DispatcherStatus is a snapshot of the queue for health checks.
type DispatcherStatus struct {
	Pending   int `json:"pending"`
	Queued    int `json:"queued"`
	QueueSize int `json:"queue_size"`
}

// Status returns the current dispatcher state.
func (d *Dispatcher) Status() DispatcherStatus {
	return DispatcherStatus{
		Pending:   d.Pending(),
		Queued:    len(d.queue),
		QueueSize: cap(d.queue),
	}
}
