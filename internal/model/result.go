package model

import "time"

// Reward is the bundle of awards granted for one match outcome
type Reward struct {
	Points       int
	XP           int
	Coins        int
	SeasonPassXP int
}

// MatchResult records one player's settled outcome for one session.
// Append-only: exactly one exists per (session, player) and it is never mutated.
type MatchResult struct {
	ID           string
	SessionID    SessionID
	PlayerID     PlayerID
	GameType     GameType
	Score        int
	Rank         int
	PointsEarned int
	XPEarned     int
	Stats        map[string]int // free-form per-game counters reported by the client
	Rewards      Reward
	CreatedAt    time.Time
}
