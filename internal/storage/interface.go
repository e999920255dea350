package storage

import (
	"context"
	"time"

	"github.com/minisport/arena/internal/model"
)

// Storage defines the interface for data persistence.
//
// The queue and score-index operations are the concurrency-critical surface:
// implementations must make EnqueueEntry, DequeuePair and ReplaceScores atomic
// with respect to other mutations on the same key.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	// ApplyScoreDelta atomically increments the player's reward counters and
	// returns the updated profile
	ApplyScoreDelta(ctx context.Context, id model.PlayerID, delta model.ScoreDelta) (*model.Player, error)

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error

	// Match result operations. SaveResult appends exactly once per
	// (session, player) and returns model.ErrResultAlreadyExists on a repeat.
	SaveResult(ctx context.Context, result *model.MatchResult) error
	GetResult(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.MatchResult, error)
	GetResultsForSession(ctx context.Context, sessionID model.SessionID) ([]model.MatchResult, error)

	// Player stats operations
	SaveStats(ctx context.Context, stats *model.PlayerStats) error
	GetStats(ctx context.Context, playerID model.PlayerID, gameType model.GameType) (*model.PlayerStats, error)

	// Queue operations. EnqueueEntry rejects duplicates by player ID
	// (model.ErrAlreadyQueued) and enforces maxDepth (model.ErrQueueFull),
	// returning the 1-based queue position. DequeuePair removes the two
	// earliest entries atomically, or nothing: it never returns a single
	// entry, and no entry can be claimed by two concurrent calls.
	EnqueueEntry(ctx context.Context, key model.QueueKey, entry model.QueueEntry, maxDepth int) (int, error)
	DequeuePair(ctx context.Context, key model.QueueKey) (*model.QueueEntry, *model.QueueEntry, error)
	// RemoveQueueEntry removes at most one entry for the player and returns
	// it; nil when the entry already left via pairing or leave
	RemoveQueueEntry(ctx context.Context, key model.QueueKey, playerID model.PlayerID) (*model.QueueEntry, error)
	QueueLength(ctx context.Context, key model.QueueKey) (int, error)
	QueueEntries(ctx context.Context, key model.QueueKey) ([]model.QueueEntry, error)
	QueueKeys(ctx context.Context) ([]model.QueueKey, error)

	// Live score index operations
	IncrementScore(ctx context.Context, playerID model.PlayerID, delta int) (int, error)
	ScoreRank(ctx context.Context, playerID model.PlayerID) (int, error)
	TopScores(ctx context.Context, n int) ([]model.RankedScore, error)
	// ReplaceScores swaps in a fully rebuilt index; concurrent readers see
	// either the old or the new index, never a partial one
	ReplaceScores(ctx context.Context, scores []model.RankedScore) error
}

// StaleBefore computes the cutoff used when pruning abandoned queue entries
func StaleBefore(now time.Time, maxAge time.Duration) time.Time {
	return now.Add(-maxAge)
}
