// Package calendar holds the calendar provider used for session events.
// No real provider is integrated; MockProvider stands in for the external call.
package calendar

import (
	"context"
	"log/slog"
	"sync"

	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type MockProvider struct {
	mu     sync.Mutex
	events map[string]shared.CalendarEvent
}

func NewMockProvider() *MockProvider {
	return &MockProvider{events: make(map[string]shared.CalendarEvent)}
}

func (p *MockProvider) CreateEvent(_ context.Context, ev shared.CalendarEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := "evt_" + uuid.NewString()
	p.events[id] = ev
	slog.Info("calendar event created", "event_id", id, "session_id", ev.SessionID, "attendees", len(ev.Attendees))
	return id, nil
}

// DeleteEvent tolerates unknown ids; the provider state is not durable.
func (p *MockProvider) DeleteEvent(_ context.Context, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.events, eventID)
	slog.Info("calendar event deleted", "event_id", eventID)
	return nil
}

func (p *MockProvider) Event(eventID string) (shared.CalendarEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, ok := p.events[eventID]
	return ev, ok
}
