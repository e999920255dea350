package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a participant in the arena
type Player struct {
	ID          PlayerID
	Username    string
	AvatarURL   string
	TotalPoints int
	XP          int
	Coins       int
	Level       int
	GamesPlayed int
	Wins        int
	Losses      int
	IsGuest     bool // true for unregistered players
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RegisteredPlayer extends Player with authentication data
// Stored separately so the password hash never travels with the profile
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScoreDelta is the set of increments applied to a player after settlement
type ScoreDelta struct {
	Points int
	XP     int
	Coins  int
	Win    bool
}
