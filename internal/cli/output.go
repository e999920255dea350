package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Session:
		o.printSession(v)
	case QueueStatus:
		o.printQueueStatus(v)
	case SubmitResult:
		o.printSubmitResult(v)
	case []MatchResult:
		o.printMatchResults(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case PlayerRank:
		o.printPlayerRank(v)
	case PlayerStats:
		o.printPlayerStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
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

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// SessionPlayer response type
type SessionPlayer struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// Session response type
type Session struct {
	ID       string          `json:"id"`
	GameType string          `json:"game_type"`
	Mode     string          `json:"mode"`
	Status   string          `json:"status"`
	Players  []SessionPlayer `json:"players"`
	WinnerID *string         `json:"winner_id"`
}

// QueueStatus response type
type QueueStatus struct {
	Position int      `json:"position"`
	Depth    int      `json:"depth"`
	Session  *Session `json:"session,omitempty"`
}

// Reward response type
type Reward struct {
	Points       int `json:"points"`
	XP           int `json:"xp"`
	Coins        int `json:"coins"`
	SeasonPassXP int `json:"season_pass_xp"`
}

// MatchResult response type
type MatchResult struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
	Rewards   Reward `json:"rewards"`
}

// SubmitResult response type
type SubmitResult struct {
	Result MatchResult `json:"result"`
	Player Player      `json:"player"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Tier     string `json:"tier"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// PlayerRank response type
type PlayerRank struct {
	PlayerID string `json:"player_id"`
	Rank     int    `json:"rank"`
	Points   int    `json:"points"`
	Tier     string `json:"tier"`
}

// PlayerStats response type
type PlayerStats struct {
	PlayerID      string    `json:"player_id"`
	GameType      string    `json:"game_type"`
	GamesPlayed   int       `json:"games_played"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	AverageScore  int       `json:"average_score"`
	BestScore     int       `json:"best_score"`
	WinRate       int       `json:"win_rate"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	LastPlayedAt  time.Time `json:"last_played_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("Player: %s (%s)\n", p.Username, p.ID)
	fmt.Printf("Guest: %s\n", guestStr)
	fmt.Printf("Level: %d (%d XP)\n", p.Level, p.XP)
	fmt.Printf("Points: %d [%s]\n", p.TotalPoints, p.Tier)
	fmt.Printf("Coins: %d\n", p.Coins)
	fmt.Printf("Record: %d played, %d won, %d lost\n", p.GamesPlayed, p.Wins, p.Losses)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Game: %s (%s)\n", s.GameType, s.Mode)
	fmt.Printf("Status: %s\n", s.Status)
	names := make([]string, len(s.Players))
	for i, p := range s.Players {
		names[i] = fmt.Sprintf("%s (%s)", p.Username, p.PlayerID)
	}
	fmt.Printf("Players: %s\n", strings.Join(names, ", "))
	if s.WinnerID != nil {
		fmt.Printf("Winner: %s\n", *s.WinnerID)
	}
}

func (o *Output) printQueueStatus(q QueueStatus) {
	if q.Session != nil {
		fmt.Println("Match found!")
		o.printSession(*q.Session)
		return
	}
	if q.Position > 0 {
		fmt.Printf("Queued at position %d\n", q.Position)
	}
	if q.Depth > 0 {
		fmt.Printf("Players waiting: %d\n", q.Depth)
	}
}

func (o *Output) printSubmitResult(r SubmitResult) {
	fmt.Printf("Result accepted: score %d, rank %d\n", r.Result.Score, r.Result.Rank)
	fmt.Printf("Rewards: %d points, %d XP, %d coins, %d season pass XP\n",
		r.Result.Rewards.Points, r.Result.Rewards.XP, r.Result.Rewards.Coins, r.Result.Rewards.SeasonPassXP)
	fmt.Println()
	o.printPlayer(r.Player)
}

func (o *Output) printMatchResults(results []MatchResult) {
	fmt.Printf("Results (%d submitted):\n", len(results))
	for _, r := range results {
		fmt.Printf("  %s: score %d, rank %d, %d points\n", r.PlayerID, r.Score, r.Rank, r.Rewards.Points)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	fmt.Printf("Leaderboard (%d entries):\n", len(l.Entries))
	for _, e := range l.Entries {
		fmt.Printf("  %2d. %s - %d points [%s]\n", e.Rank, e.Username, e.Points, e.Tier)
	}
}

func (o *Output) printPlayerRank(r PlayerRank) {
	fmt.Printf("Player: %s\n", r.PlayerID)
	fmt.Printf("Rank: %d\n", r.Rank)
	fmt.Printf("Points: %d [%s]\n", r.Points, r.Tier)
}

func (o *Output) printPlayerStats(s PlayerStats) {
	fmt.Printf("Stats for %s (%s):\n", s.PlayerID, s.GameType)
	fmt.Printf("  Games: %d (%d won, %d lost, %d%% win rate)\n", s.GamesPlayed, s.Wins, s.Losses, s.WinRate)
	fmt.Printf("  Scores: best %d, average %d\n", s.BestScore, s.AverageScore)
	fmt.Printf("  Streak: %d current, %d longest\n", s.CurrentStreak, s.LongestStreak)
	fmt.Printf("  Last played: %s\n", s.LastPlayedAt.Format(time.RFC3339))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
