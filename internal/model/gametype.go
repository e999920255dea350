package model

// GameType identifies a mini-game discipline
type GameType string

const (
	GameTypeRunning   GameType = "running"
	GameTypeJumping   GameType = "jumping"
	GameTypeThrowing  GameType = "throwing"
	GameTypeBalance   GameType = "balance"
	GameTypeEndurance GameType = "endurance"
)

// GameMode identifies how a session is contested
type GameMode string

const (
	ModeOneVsOne     GameMode = "1v1"
	ModeBattleRoyale GameMode = "battle-royale"
	ModeTournament   GameMode = "tournament"
)

// NormalizeGameType maps arbitrary client input to a valid game type.
// Unknown values fall back to running.
func NormalizeGameType(s string) GameType {
	switch GameType(s) {
	case GameTypeRunning, GameTypeJumping, GameTypeThrowing, GameTypeBalance, GameTypeEndurance:
		return GameType(s)
	default:
		return GameTypeRunning
	}
}

// NormalizeGameMode maps arbitrary client input to a valid mode.
// Legacy "ranked" and "casual" labels resolve to 1v1, as does anything unknown.
func NormalizeGameMode(s string) GameMode {
	switch GameMode(s) {
	case ModeOneVsOne, ModeBattleRoyale, ModeTournament:
		return GameMode(s)
	default:
		return ModeOneVsOne
	}
}
