package audit

import (
	"context"
	"log/slog"
)

// Queue is a Store that hands events to a Worker through a bounded channel.
// When the channel is full the event is dropped and logged rather than
// blocking the caller.
type Queue struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewQueue creates a queue holding up to size pending events.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{inbox: make(chan Event, size), logger: logger}
}

func (q *Queue) Append(ctx context.Context, event Event) error {
	select {
	case q.inbox <- event:
	default:
		if q.logger != nil {
			q.logger.WarnContext(ctx, "audit queue full, dropping event", "action", event.Action)
		}
	}
	return nil
}

// Inbox exposes the receive side for a Worker.
func (q *Queue) Inbox() <-chan Event { return q.inbox }

// Worker consumes audit events from a channel and persists them. It keeps
// the request path free of sink latency.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is done, then flushes whatever is still
// buffered. Append failures are logged and the worker keeps going.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) flush(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.persist(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) persist(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
