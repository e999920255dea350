package stats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/minisport/arena/internal/dependencies/clock"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/storage"
)

// Outcome is a single match result from one player's perspective
type Outcome struct {
	Score    int
	Win      bool
	PlayedAt time.Time
}

// Apply folds one outcome into an existing aggregate. Pure; the input is not
// mutated.
func Apply(current model.PlayerStats, outcome Outcome) model.PlayerStats {
	next := current
	next.GamesPlayed++
	if outcome.Win {
		next.Wins++
		next.CurrentStreak++
	} else {
		next.Losses++
		next.CurrentStreak = 0
	}
	next.TotalScore += outcome.Score
	next.AverageScore = next.TotalScore / next.GamesPlayed
	if outcome.Score > next.BestScore {
		next.BestScore = outcome.Score
	}
	next.WinRate = next.Wins * 100 / next.GamesPlayed
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.LastPlayedAt = outcome.PlayedAt
	return next
}

// Aggregator maintains per-(player, game type) statistics in storage
type Aggregator struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new stats Aggregator
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "stats")),
	}
}

// Record loads the player's aggregate for the game type, folds the outcome in
// and writes it back. A first outcome initializes the aggregate.
func (a *Aggregator) Record(ctx context.Context, playerID model.PlayerID, gameType model.GameType, outcome Outcome) (*model.PlayerStats, error) {
	current, err := a.storage.GetStats(ctx, playerID, gameType)
	if err != nil {
		if !errors.Is(err, model.ErrStatsNotFound) {
			return nil, err
		}
		current = &model.PlayerStats{PlayerID: playerID, GameType: gameType}
	}

	if outcome.PlayedAt.IsZero() {
		outcome.PlayedAt = a.clock.Now()
	}

	next := Apply(*current, outcome)
	if err := a.storage.SaveStats(ctx, &next); err != nil {
		return nil, err
	}

	a.logger.Debug("stats recorded",
		slog.String("player_id", string(playerID)),
		slog.String("game_type", string(gameType)),
		slog.Int("games_played", next.GamesPlayed),
		slog.Int("current_streak", next.CurrentStreak))
	return &next, nil
}

// Get returns the player's aggregate for the game type
func (a *Aggregator) Get(ctx context.Context, playerID model.PlayerID, gameType model.GameType) (*model.PlayerStats, error) {
	return a.storage.GetStats(ctx, playerID, gameType)
}
