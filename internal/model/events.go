package model

import "time"

// EventType identifies the type of event delivered to clients
type EventType string

const (
	// Session room events
	EventPlayerJoined  EventType = "player:joined"
	EventPlayerLeft    EventType = "player:left"
	EventGameState     EventType = "game:state"
	EventGameFinished  EventType = "game:finished"
	EventGameCancelled EventType = "game:cancelled"

	// Matchmaking events, delivered to a single connection
	EventMatchQueued EventType = "matchmaking:queued"
	EventMatchFound  EventType = "matchmaking:found"
)

// Event is the base structure for all broadcast events. Payload holds the
// type-specific struct for the event's Type; the set of payload types below
// is closed.
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID SessionID // Empty for matchmaking-only events
	PlayerID  PlayerID  // The player who triggered or is affected
	Payload   any
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID     PlayerID
	ConnectionID ConnectionID
}

// PlayerLeftPayload contains data for player left events
type PlayerLeftPayload struct {
	PlayerID PlayerID
}

// GameStatePayload relays an in-game state update to the session room
type GameStatePayload struct {
	PlayerID PlayerID
	State    map[string]any
}

// MatchQueuedPayload reports a player's position after joining a queue
type MatchQueuedPayload struct {
	Position int
}

// MatchFoundPayload notifies a queued player that a session was created
type MatchFoundPayload struct {
	SessionID  SessionID
	OpponentID PlayerID
}

// GameFinishedPayload carries the full result set at settlement
type GameFinishedPayload struct {
	SessionID SessionID
	WinnerID  PlayerID
	Results   []MatchResult
}

// GameCancelledPayload contains data for cancellation events
type GameCancelledPayload struct {
	SessionID SessionID
	Reason    string
}
