package mocks

import (
	"sync"

	"github.com/minisport/arena/internal/broadcast"
	"github.com/minisport/arena/internal/model"
)

// MockBroadcaster records delivered events for assertions in tests
type MockBroadcaster struct {
	mu            sync.Mutex
	sessionEvents map[model.SessionID][]model.Event
	playerEvents  map[model.PlayerID][]model.Event
}

// Ensure MockBroadcaster implements Broadcaster
var _ broadcast.Broadcaster = (*MockBroadcaster)(nil)

// NewMockBroadcaster creates a new MockBroadcaster
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{
		sessionEvents: make(map[model.SessionID][]model.Event),
		playerEvents:  make(map[model.PlayerID][]model.Event),
	}
}

// ToSession records an event delivered to a session room
func (b *MockBroadcaster) ToSession(sessionID model.SessionID, event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionEvents[sessionID] = append(b.sessionEvents[sessionID], event)
}

// ToPlayer records an event delivered to a player room
func (b *MockBroadcaster) ToPlayer(playerID model.PlayerID, event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playerEvents[playerID] = append(b.playerEvents[playerID], event)
}

// SessionEvents returns the events delivered to a session room
func (b *MockBroadcaster) SessionEvents(sessionID model.SessionID) []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Event(nil), b.sessionEvents[sessionID]...)
}

// PlayerEvents returns the events delivered to a player room
func (b *MockBroadcaster) PlayerEvents(playerID model.PlayerID) []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Event(nil), b.playerEvents[playerID]...)
}

// Reset clears all recorded events
func (b *MockBroadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionEvents = make(map[model.SessionID][]model.Event)
	b.playerEvents = make(map[model.PlayerID][]model.Event)
}
