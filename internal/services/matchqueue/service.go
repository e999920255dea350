package matchqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/minisport/arena/internal/broadcast"
	"github.com/minisport/arena/internal/dependencies/clock"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/session"
	"github.com/minisport/arena/internal/storage"
)

// Config holds matchmaking queue settings
type Config struct {
	// MaxDepth bounds each queue; 0 means unbounded
	MaxDepth int

	// EntryMaxAge is how long an entry may wait before pruning removes it
	EntryMaxAge time.Duration
}

// DefaultConfig returns default queue configuration
func DefaultConfig() Config {
	return Config{
		MaxDepth:    1000,
		EntryMaxAge: 2 * time.Minute,
	}
}

// JoinResult reports what happened to a join request: the queue position
// always, and the created session when the join completed a pair
type JoinResult struct {
	Position int
	Session  *model.Session
}

// Service runs per-(game type, mode) FIFO matchmaking. Pairing rides on the
// storage layer's atomic pop-two primitive, so two concurrent joins can never
// claim the same entry even across server instances.
type Service struct {
	storage     storage.Storage
	sessions    *session.Controller
	broadcaster broadcast.Broadcaster
	clock       clock.Clock
	logger      *slog.Logger
	cfg         Config
}

// New creates a new matchmaking Service
func New(
	storage storage.Storage,
	sessions *session.Controller,
	broadcaster broadcast.Broadcaster,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:     storage,
		sessions:    sessions,
		broadcaster: broadcaster,
		clock:       clock,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "matchqueue")),
	}
}

// Join puts a player into the queue for a game type and mode. When the join
// completes a pair, the two earliest entries are claimed atomically, a
// countdown session is created and both players are notified.
func (s *Service) Join(ctx context.Context, playerID model.PlayerID, connectionID model.ConnectionID, gameType model.GameType, mode model.GameMode) (*JoinResult, error) {
	if _, err := s.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	gameType = model.NormalizeGameType(string(gameType))
	mode = model.NormalizeGameMode(string(mode))
	key := model.QueueKey{GameType: gameType, Mode: mode}

	entry := model.QueueEntry{
		PlayerID:     playerID,
		ConnectionID: connectionID,
		GameType:     gameType,
		Mode:         mode,
		JoinedAt:     s.clock.Now(),
	}

	position, err := s.storage.EnqueueEntry(ctx, key, entry, s.cfg.MaxDepth)
	if err != nil {
		return nil, err
	}

	s.logger.Info("player queued",
		slog.String("player_id", string(playerID)),
		slog.String("queue", key.String()),
		slog.Int("position", position))

	s.broadcaster.ToPlayer(playerID, model.Event{
		Type:      model.EventMatchQueued,
		Timestamp: s.clock.Now(),
		PlayerID:  playerID,
		Payload:   model.MatchQueuedPayload{Position: position},
	})

	matched, err := s.tryPair(ctx, key)
	if err != nil {
		return nil, err
	}
	return &JoinResult{Position: position, Session: matched}, nil
}

// tryPair claims the two earliest entries if the queue holds at least two,
// and turns them into a countdown session
func (s *Service) tryPair(ctx context.Context, key model.QueueKey) (*model.Session, error) {
	first, second, err := s.storage.DequeuePair(ctx, key)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}

	matched, err := s.sessions.CreateMatch(ctx, key.GameType, key.Mode, *first, *second)
	if err != nil {
		// The pair is already claimed; put both back rather than lose them
		s.requeue(ctx, key, *first, *second)
		return nil, err
	}

	s.notifyFound(matched, first.PlayerID, second.PlayerID)
	s.notifyFound(matched, second.PlayerID, first.PlayerID)

	s.logger.Info("players paired",
		slog.String("session_id", string(matched.ID)),
		slog.String("player_1", string(first.PlayerID)),
		slog.String("player_2", string(second.PlayerID)),
		slog.String("queue", key.String()))
	return matched, nil
}

func (s *Service) notifyFound(matched *model.Session, playerID, opponentID model.PlayerID) {
	s.broadcaster.ToPlayer(playerID, model.Event{
		Type:      model.EventMatchFound,
		Timestamp: s.clock.Now(),
		SessionID: matched.ID,
		PlayerID:  playerID,
		Payload:   model.MatchFoundPayload{SessionID: matched.ID, OpponentID: opponentID},
	})
}

func (s *Service) requeue(ctx context.Context, key model.QueueKey, entries ...model.QueueEntry) {
	for _, entry := range entries {
		if _, err := s.storage.EnqueueEntry(ctx, key, entry, 0); err != nil {
			s.logger.Error("failed to requeue entry after pairing failure",
				slog.String("player_id", string(entry.PlayerID)),
				slog.String("queue", key.String()),
				slog.Any("error", err))
		}
	}
}

// Leave removes the player's entry from a queue. Removing an entry that
// already left via pairing is a no-op; the returned entry is nil in that case.
func (s *Service) Leave(ctx context.Context, playerID model.PlayerID, gameType model.GameType, mode model.GameMode) (*model.QueueEntry, error) {
	key := model.QueueKey{
		GameType: model.NormalizeGameType(string(gameType)),
		Mode:     model.NormalizeGameMode(string(mode)),
	}

	removed, err := s.storage.RemoveQueueEntry(ctx, key, playerID)
	if err != nil {
		return nil, err
	}
	if removed != nil {
		s.logger.Info("player left queue",
			slog.String("player_id", string(playerID)),
			slog.String("queue", key.String()))
	}
	return removed, nil
}

// Depth returns the current waiting count for a queue
func (s *Service) Depth(ctx context.Context, gameType model.GameType, mode model.GameMode) (int, error) {
	key := model.QueueKey{
		GameType: model.NormalizeGameType(string(gameType)),
		Mode:     model.NormalizeGameMode(string(mode)),
	}
	return s.storage.QueueLength(ctx, key)
}

// Prune removes entries older than the configured maximum age across all
// queues and returns how many were removed. Entries that pair between the
// listing and the removal are left alone; removal is per-entry atomic.
func (s *Service) Prune(ctx context.Context) (int, error) {
	keys, err := s.storage.QueueKeys(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := storage.StaleBefore(s.clock.Now(), s.cfg.EntryMaxAge)
	pruned := 0
	for _, key := range keys {
		entries, err := s.storage.QueueEntries(ctx, key)
		if err != nil {
			return pruned, err
		}
		for _, entry := range entries {
			if !entry.JoinedAt.Before(cutoff) {
				continue
			}
			removed, err := s.storage.RemoveQueueEntry(ctx, key, entry.PlayerID)
			if err != nil {
				return pruned, err
			}
			if removed != nil {
				pruned++
			}
		}
	}

	if pruned > 0 {
		s.logger.Info("stale queue entries pruned", slog.Int("removed", pruned))
	}
	return pruned, nil
}
