package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSessionState = errors.New("operation not valid for current session status")
	ErrNotParticipant      = errors.New("player is not a participant in this session")
	ErrResultAlreadyExists = errors.New("result already submitted for this player")
	ErrResultNotFound      = errors.New("result not found")
	ErrInsufficientPlayers = errors.New("insufficient players for session")

	// Queue errors
	ErrAlreadyQueued = errors.New("player is already in this queue")
	ErrQueueFull     = errors.New("queue is at capacity")

	// Leaderboard errors
	ErrPlayerNotRanked = errors.New("player has no leaderboard rank")

	// Stats errors
	ErrStatsNotFound = errors.New("stats not found")

	// Store errors
	// ErrStoreUnavailable wraps transient backing-store failures; callers may
	// retry a bounded number of times before surfacing a server error
	ErrStoreUnavailable = errors.New("backing store unavailable")
)
