package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/minisport/arena/internal/broadcast"
	"github.com/minisport/arena/internal/model"
)

// Broadcaster delivers domain events to SSE clients, one hub per room.
// Events are serialized as JSON and named by their event type, so a browser
// can subscribe with addEventListener("matchmaking:found", ...).
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// Ensure Broadcaster implements the broadcast interface
var _ broadcast.Broadcaster = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// ToSession delivers an event to every client watching a session
func (b *Broadcaster) ToSession(sessionID model.SessionID, event model.Event) {
	b.emit(broadcast.SessionRoom(sessionID), event)
}

// ToPlayer delivers an event to a single player's connections
func (b *Broadcaster) ToPlayer(playerID model.PlayerID, event model.Event) {
	b.emit(broadcast.PlayerRoom(playerID), event)
}

func (b *Broadcaster) emit(room string, event model.Event) {
	// No hub means no subscribers; nothing to deliver
	hub := b.hubManager.GetHub(room)
	if hub == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("room", room),
			slog.String("event_type", string(event.Type)),
			slog.Any("error", err))
		return
	}

	hub.BroadcastEvent(string(event.Type), string(data))
}
