package testutil

import (
	"sync"

	"github.com/Makuqty/GridLock/internal/model"
)

// RecordedEvent is one event captured by a RecordingTransport
type RecordedEvent struct {
	Event model.EventType
	Data  any
}

// RecordingTransport is a model.Transport that records every event sent
// to it. Safe for concurrent use.
type RecordingTransport struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// Ensure RecordingTransport implements Transport
var _ model.Transport = (*RecordingTransport)(nil)

// NewRecordingTransport creates a new RecordingTransport
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{}
}

// Send records the event
func (t *RecordingTransport) Send(event model.EventType, data any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, RecordedEvent{Event: event, Data: data})
}

// Events returns a copy of all recorded events
func (t *RecordingTransport) Events() []RecordedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RecordedEvent, len(t.events))
	copy(out, t.events)
	return out
}

// EventsOfType returns all recorded events with the given type
func (t *RecordingTransport) EventsOfType(event model.EventType) []RecordedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []RecordedEvent
	for _, e := range t.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent event with the given type, or nil
func (t *RecordingTransport) Last(event model.EventType) *RecordedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.events) - 1; i >= 0; i-- {
		if t.events[i].Event == event {
			e := t.events[i]
			return &e
		}
	}
	return nil
}

// Reset clears all recorded events
func (t *RecordingTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}
