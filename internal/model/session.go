package model

import "time"

// SessionID uniquely identifies a game session
type SessionID string

// SessionStatus represents the current phase of a session's lifecycle
type SessionStatus string

const (
	SessionWaiting   SessionStatus = "waiting"   // Created directly, waiting for play to begin
	SessionCountdown SessionStatus = "countdown" // Paired by the match queue, pre-game countdown
	SessionActive    SessionStatus = "active"    // Play in progress
	SessionFinished  SessionStatus = "finished"  // Settled; terminal
	SessionCancelled SessionStatus = "cancelled" // Aborted without settlement; terminal
)

// IsTerminal reports whether the status admits no further transitions
func (s SessionStatus) IsTerminal() bool {
	return s == SessionFinished || s == SessionCancelled
}

// order gives each non-terminal status a position in the forward-only chain
func (s SessionStatus) order() int {
	switch s {
	case SessionWaiting:
		return 0
	case SessionCountdown:
		return 1
	case SessionActive:
		return 2
	case SessionFinished:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. Cancelled is reachable from any non-terminal status.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == SessionCancelled {
		return true
	}
	return next.order() > s.order()
}

// SessionPlayer is the participant snapshot embedded in a session
type SessionPlayer struct {
	PlayerID  PlayerID
	Username  string
	AvatarURL string
}

// Session represents one mini-game match from creation to settlement
type Session struct {
	ID       SessionID
	GameType GameType
	Mode     GameMode
	Players  []SessionPlayer
	Status   SessionStatus

	StartedAt *time.Time
	EndedAt   *time.Time
	WinnerID  PlayerID // Empty until a rank-1 result settles

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlayer reports whether the given player is a participant
func (s *Session) HasPlayer(playerID PlayerID) bool {
	for _, p := range s.Players {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

// PlayerIDs returns the participant IDs in join order
func (s *Session) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.PlayerID
	}
	return ids
}
