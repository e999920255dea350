package model

import "time"

// PlayerStats is the per-(player, game type) aggregate, updated incrementally
// on every settlement and never recomputed from scratch in the steady state
type PlayerStats struct {
	PlayerID      PlayerID
	GameType      GameType
	GamesPlayed   int
	Wins          int
	Losses        int
	TotalScore    int
	AverageScore  int
	BestScore     int
	WinRate       int // whole percent, floored
	CurrentStreak int
	LongestStreak int
	LastPlayedAt  time.Time
}
