package audit

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryStore keeps events in process; used by tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of every appended event in order.
func (s *InMemoryStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ListByProfile returns the events recorded for profileID.
func (s *InMemoryStore) ListByProfile(_ context.Context, profileID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	return out, nil
}

// LogStore writes events to a structured logger. It is the sink when no
// broker is configured.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	if s.logger == nil {
		return nil
	}
	s.logger.InfoContext(ctx, "audit_event",
		"action", event.Action,
		"actor_id", event.ActorID,
		"profile_id", event.ProfileID,
		"decision", event.Decision,
		"reason", event.Reason,
		"step", event.Step,
		"request_id", event.RequestID,
		"timestamp", event.Timestamp,
	)
	return nil
}
