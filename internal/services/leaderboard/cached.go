package leaderboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minisport/arena/internal/dependencies/clock"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/storage"
)

// snapshot is an immutable ranked materialization of all player scores
type snapshot struct {
	scores  []model.RankedScore
	ranks   map[model.PlayerID]int
	builtAt time.Time
}

// Cached serves leaderboard reads from a TTL-bounded snapshot of the player
// directory. Reads within the TTL are stale by at most that bound; a score
// change invalidates the snapshot so the next read rebuilds. The snapshot is
// swapped through an atomic pointer, so concurrent readers always see a
// complete materialization.
type Cached struct {
	storage storage.Storage
	clock   clock.Clock
	ttl     time.Duration
	logger  *slog.Logger

	snap      atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
}

// Ensure Cached implements Index
var _ Index = (*Cached)(nil)

// NewCached creates a Cached leaderboard index with the given snapshot TTL
func NewCached(storage storage.Storage, clock clock.Clock, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		storage: storage,
		clock:   clock,
		ttl:     ttl,
		logger:  logger.With(slog.String("component", "leaderboard"), slog.String("backend", "cached")),
	}
}

func (c *Cached) TopN(ctx context.Context, n int) ([]model.RankedScore, error) {
	snap, err := c.fresh(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(snap.scores) {
		n = len(snap.scores)
	}
	if n < 0 {
		n = 0
	}
	return append([]model.RankedScore(nil), snap.scores[:n]...), nil
}

func (c *Cached) RankOf(ctx context.Context, playerID model.PlayerID) (int, error) {
	snap, err := c.fresh(ctx)
	if err != nil {
		return 0, err
	}
	rank, ok := snap.ranks[playerID]
	if !ok {
		return 0, model.ErrPlayerNotRanked
	}
	return rank, nil
}

// IncrementScore invalidates the snapshot; the score itself already lives in
// the player directory, which is the rebuild source
func (c *Cached) IncrementScore(ctx context.Context, playerID model.PlayerID, delta int) (int, error) {
	c.snap.Store(nil)

	player, err := c.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return 0, err
	}
	return player.TotalPoints, nil
}

// Rebuild forces a fresh snapshot regardless of TTL
func (c *Cached) Rebuild(ctx context.Context) error {
	c.snap.Store(nil)
	_, err := c.fresh(ctx)
	return err
}

// fresh returns the current snapshot, rebuilding when missing or expired
func (c *Cached) fresh(ctx context.Context) (*snapshot, error) {
	if snap := c.snap.Load(); snap != nil && c.clock.Since(snap.builtAt) < c.ttl {
		return snap, nil
	}
	return c.rebuild(ctx)
}

func (c *Cached) rebuild(ctx context.Context) (*snapshot, error) {
	// One rebuild at a time; latecomers reuse the winner's snapshot
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	if snap := c.snap.Load(); snap != nil && c.clock.Since(snap.builtAt) < c.ttl {
		return snap, nil
	}

	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]model.RankedScore, 0, len(players))
	for _, p := range players {
		scores = append(scores, model.RankedScore{PlayerID: p.ID, Score: p.TotalPoints})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].PlayerID < scores[j].PlayerID
	})

	ranks := make(map[model.PlayerID]int, len(scores))
	for i, rs := range scores {
		ranks[rs.PlayerID] = i + 1
	}

	snap := &snapshot{scores: scores, ranks: ranks, builtAt: c.clock.Now()}
	c.snap.Store(snap)

	c.logger.Debug("leaderboard snapshot rebuilt", slog.Int("players", len(scores)))
	return snap, nil
}
