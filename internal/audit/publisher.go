// Package audit records visibility decisions and profile mutations. Events go
// through a Publisher to a Store: in memory for tests, the structured log, or
// a Kafka topic.
package audit

import (
	"context"
	"log/slog"

	"personas/pkg/requestcontext"
)

// Store is an append-only sink for events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit stamps the event with the request time and id when unset and appends it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return p.store.Append(ctx, event)
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// LogAudit logs the event to logger and emits it to publisher. Either may be
// nil. Publish failures are logged, never returned: audit is not on the
// decision path.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Emitter, event Event) {
	if logger != nil {
		logger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"actor_id", event.ActorID,
			"profile_id", event.ProfileID,
			"decision", event.Decision,
			"reason", event.Reason,
			"step", event.Step,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to publish audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
