package broadcast

import "github.com/minisport/arena/internal/model"

// Broadcaster delivers domain events to connected clients. Implementations
// must not block the caller; slow consumers get dropped, not waited on.
type Broadcaster interface {
	// ToSession delivers an event to every client watching a session
	ToSession(sessionID model.SessionID, event model.Event)

	// ToPlayer delivers an event to a single player's connections
	ToPlayer(playerID model.PlayerID, event model.Event)
}

// SessionRoom names the room for clients watching a session
func SessionRoom(sessionID model.SessionID) string {
	return "session:" + string(sessionID)
}

// PlayerRoom names the room for a player's own event stream
func PlayerRoom(playerID model.PlayerID) string {
	return "player:" + string(playerID)
}
