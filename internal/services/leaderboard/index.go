package leaderboard

import (
	"context"
	"log/slog"

	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/storage"
)

// Index is the single leaderboard abstraction callers use. Two backends
// implement it: Live keeps an always-current ranked index updated on every
// score change, Cached serves a TTL-bounded snapshot rebuilt on demand.
// Callers never need to know which one is wired in.
type Index interface {
	// TopN returns the best n players, ordered by score descending with
	// lower player ID winning ties
	TopN(ctx context.Context, n int) ([]model.RankedScore, error)

	// RankOf returns a player's 1-based rank, or model.ErrPlayerNotRanked
	RankOf(ctx context.Context, playerID model.PlayerID) (int, error)

	// IncrementScore applies a score delta and returns the new total
	IncrementScore(ctx context.Context, playerID model.PlayerID, delta int) (int, error)

	// Rebuild rematerializes the index from the player directory. Safe to
	// run concurrently with reads; readers see the old or the new index,
	// never a partial one.
	Rebuild(ctx context.Context) error
}

// Live is the always-current backend, delegating to the storage layer's
// ranked score index (Redis sorted set, or the in-memory treap).
type Live struct {
	storage storage.Storage
	logger  *slog.Logger
}

// Ensure Live implements Index
var _ Index = (*Live)(nil)

// NewLive creates a Live leaderboard index
func NewLive(storage storage.Storage, logger *slog.Logger) *Live {
	return &Live{
		storage: storage,
		logger:  logger.With(slog.String("component", "leaderboard"), slog.String("backend", "live")),
	}
}

func (l *Live) TopN(ctx context.Context, n int) ([]model.RankedScore, error) {
	return l.storage.TopScores(ctx, n)
}

func (l *Live) RankOf(ctx context.Context, playerID model.PlayerID) (int, error) {
	return l.storage.ScoreRank(ctx, playerID)
}

func (l *Live) IncrementScore(ctx context.Context, playerID model.PlayerID, delta int) (int, error) {
	return l.storage.IncrementScore(ctx, playerID, delta)
}

// Rebuild resyncs the ranked index from the player directory. The index is
// normally kept current incrementally; this repairs any drift.
func (l *Live) Rebuild(ctx context.Context) error {
	players, err := l.storage.ListPlayers(ctx)
	if err != nil {
		return err
	}

	scores := make([]model.RankedScore, 0, len(players))
	for _, p := range players {
		scores = append(scores, model.RankedScore{PlayerID: p.ID, Score: p.TotalPoints})
	}

	if err := l.storage.ReplaceScores(ctx, scores); err != nil {
		return err
	}

	l.logger.Info("leaderboard rebuilt", slog.Int("players", len(scores)))
	return nil
}
