package model

// RankedScore is a raw (player, score) pair from the live score index
type RankedScore struct {
	PlayerID PlayerID
	Score    int
}

// LeaderboardEntry is a ranked view row hydrated with profile fields
type LeaderboardEntry struct {
	PlayerID  PlayerID
	Username  string
	AvatarURL string
	Points    int
	Rank      int
}
