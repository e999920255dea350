package response

import (
	"time"

	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/players"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	TotalPoints int    `json:"total_points"`
	XP          int    `json:"xp"`
	Coins       int    `json:"coins"`
	Level       int    `json:"level"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Tier        string `json:"tier"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		TotalPoints: p.TotalPoints,
		XP:          p.XP,
		Coins:       p.Coins,
		Level:       p.Level,
		GamesPlayed: p.GamesPlayed,
		Wins:        p.Wins,
		Losses:      p.Losses,
		Tier:        model.TierName(model.TierFromPoints(p.TotalPoints)),
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a login session
func AuthResponseFromSession(s *players.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// SessionPlayer is a participant row in a session response
type SessionPlayer struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Session represents a game session in API responses
type Session struct {
	ID        string          `json:"id"`
	GameType  string          `json:"game_type"`
	Mode      string          `json:"mode"`
	Status    string          `json:"status"`
	Players   []SessionPlayer `json:"players"`
	WinnerID  *string         `json:"winner_id"`
	StartedAt *time.Time      `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// SessionFromModel converts a model.Session
func SessionFromModel(s *model.Session) Session {
	sessionPlayers := make([]SessionPlayer, len(s.Players))
	for i, p := range s.Players {
		sessionPlayers[i] = SessionPlayer{
			PlayerID:  string(p.PlayerID),
			Username:  p.Username,
			AvatarURL: p.AvatarURL,
		}
	}
	var winner *string
	if s.WinnerID != "" {
		w := string(s.WinnerID)
		winner = &w
	}
	return Session{
		ID:        string(s.ID),
		GameType:  string(s.GameType),
		Mode:      string(s.Mode),
		Status:    string(s.Status),
		Players:   sessionPlayers,
		WinnerID:  winner,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		CreatedAt: s.CreatedAt,
	}
}

// Reward is the award bundle in result responses
type Reward struct {
	Points       int `json:"points"`
	XP           int `json:"xp"`
	Coins        int `json:"coins"`
	SeasonPassXP int `json:"season_pass_xp"`
}

// MatchResult represents one settled outcome in API responses
type MatchResult struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	PlayerID  string         `json:"player_id"`
	GameType  string         `json:"game_type"`
	Score     int            `json:"score"`
	Rank      int            `json:"rank"`
	Stats     map[string]int `json:"stats,omitempty"`
	Rewards   Reward         `json:"rewards"`
	CreatedAt time.Time      `json:"created_at"`
}

// MatchResultFromModel converts a model.MatchResult
func MatchResultFromModel(r *model.MatchResult) MatchResult {
	return MatchResult{
		ID:        r.ID,
		SessionID: string(r.SessionID),
		PlayerID:  string(r.PlayerID),
		GameType:  string(r.GameType),
		Score:     r.Score,
		Rank:      r.Rank,
		Stats:     r.Stats,
		Rewards: Reward{
			Points:       r.Rewards.Points,
			XP:           r.Rewards.XP,
			Coins:        r.Rewards.Coins,
			SeasonPassXP: r.Rewards.SeasonPassXP,
		},
		CreatedAt: r.CreatedAt,
	}
}

// SubmitResultResponse returns the accepted result and the submitter's
// updated profile
type SubmitResultResponse struct {
	Result MatchResult `json:"result"`
	Player Player      `json:"player"`
}

// QueueStatus is the response for queue join and status endpoints. Depth is
// never omitted; zero is a meaningful answer for a status read.
type QueueStatus struct {
	Position int      `json:"position"`
	Depth    int      `json:"depth"`
	Session  *Session `json:"session,omitempty"`
}

// PlayerStats represents the per-game-type aggregate in API responses
type PlayerStats struct {
	PlayerID      string    `json:"player_id"`
	GameType      string    `json:"game_type"`
	GamesPlayed   int       `json:"games_played"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	TotalScore    int       `json:"total_score"`
	AverageScore  int       `json:"average_score"`
	BestScore     int       `json:"best_score"`
	WinRate       int       `json:"win_rate"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	LastPlayedAt  time.Time `json:"last_played_at"`
}

// PlayerStatsFromModel converts a model.PlayerStats
func PlayerStatsFromModel(s *model.PlayerStats) PlayerStats {
	return PlayerStats{
		PlayerID:      string(s.PlayerID),
		GameType:      string(s.GameType),
		GamesPlayed:   s.GamesPlayed,
		Wins:          s.Wins,
		Losses:        s.Losses,
		TotalScore:    s.TotalScore,
		AverageScore:  s.AverageScore,
		BestScore:     s.BestScore,
		WinRate:       s.WinRate,
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		LastPlayedAt:  s.LastPlayedAt,
	}
}

// LeaderboardEntry is one ranked row in leaderboard responses
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Points    int    `json:"points"`
	Tier      string `json:"tier"`
}

// LeaderboardEntryFromModel converts a model.LeaderboardEntry
func LeaderboardEntryFromModel(e model.LeaderboardEntry) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:      e.Rank,
		PlayerID:  string(e.PlayerID),
		Username:  e.Username,
		AvatarURL: e.AvatarURL,
		Points:    e.Points,
		Tier:      model.TierName(model.TierFromPoints(e.Points)),
	}
}

// Leaderboard is the response for leaderboard reads
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// PlayerRank is the response for a single player's rank lookup
type PlayerRank struct {
	PlayerID string `json:"player_id"`
	Rank     int    `json:"rank"`
	Points   int    `json:"points"`
	Tier     string `json:"tier"`
}
