package testutil

import (
	"context"
	"sync"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
)

// EventRecorder is an events.Publisher that keeps published events in memory.
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

var _ events.Publisher = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *EventRecorder) Close() error { return nil }

// Events returns a copy of everything recorded so far.
func (r *EventRecorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type.
func (r *EventRecorder) OfType(eventType string) []events.Event {
	var out []events.Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
