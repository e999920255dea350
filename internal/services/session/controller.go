package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/minisport/arena/internal/broadcast"
	"github.com/minisport/arena/internal/dependencies/clock"
	"github.com/minisport/arena/internal/dependencies/random"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/retry"
	"github.com/minisport/arena/internal/services/leaderboard"
	"github.com/minisport/arena/internal/services/rewards"
	"github.com/minisport/arena/internal/services/stats"
	"github.com/minisport/arena/internal/storage"
)

const (
	// SessionIDLength is the length of the random part of generated session IDs
	SessionIDLength = 12
)

// Controller owns the session lifecycle: creation, the forward-only status
// machine, and settlement. Settlement orders its writes so rewards and stats
// are durable before any broadcast goes out.
type Controller struct {
	storage     storage.Storage
	rewards     *rewards.Engine
	stats       *stats.Aggregator
	index       leaderboard.Index
	broadcaster broadcast.Broadcaster
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger

	locks *keyedMutex
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	rewardEngine *rewards.Engine,
	statsAggregator *stats.Aggregator,
	index leaderboard.Index,
	broadcaster broadcast.Broadcaster,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:     storage,
		rewards:     rewardEngine,
		stats:       statsAggregator,
		index:       index,
		broadcaster: broadcaster,
		clock:       clock,
		random:      random,
		logger:      logger.With(slog.String("component", "session")),
		locks:       newKeyedMutex(),
	}
}

// Create starts a session directly for a single player, in waiting status.
// Further players join via Join; the match queue uses CreateMatch instead.
func (c *Controller) Create(ctx context.Context, creatorID model.PlayerID, gameType model.GameType, mode model.GameMode) (*model.Session, error) {
	player, err := c.storage.GetPlayer(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:       c.newSessionID(),
		GameType: model.NormalizeGameType(string(gameType)),
		Mode:     model.NormalizeGameMode(string(mode)),
		Status:   model.SessionWaiting,
		Players: []model.SessionPlayer{
			{PlayerID: player.ID, Username: player.Username, AvatarURL: player.AvatarURL},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("game_type", string(session.GameType)),
		slog.String("mode", string(session.Mode)))
	return session, nil
}

// CreateMatch starts a session for two queue-paired players, in countdown
// status
func (c *Controller) CreateMatch(ctx context.Context, gameType model.GameType, mode model.GameMode, first, second model.QueueEntry) (*model.Session, error) {
	participants := make([]model.SessionPlayer, 0, 2)
	for _, entry := range []model.QueueEntry{first, second} {
		player, err := c.storage.GetPlayer(ctx, entry.PlayerID)
		if err != nil {
			return nil, err
		}
		participants = append(participants, model.SessionPlayer{
			PlayerID:  player.ID,
			Username:  player.Username,
			AvatarURL: player.AvatarURL,
		})
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:        c.newSessionID(),
		GameType:  model.NormalizeGameType(string(gameType)),
		Mode:      model.NormalizeGameMode(string(mode)),
		Status:    model.SessionCountdown,
		Players:   participants,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("match session created",
		slog.String("session_id", string(session.ID)),
		slog.String("player_1", string(first.PlayerID)),
		slog.String("player_2", string(second.PlayerID)))
	return session, nil
}

// Get retrieves a session by ID
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// Join adds a player to a waiting session and announces them to the room
func (c *Controller) Join(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, connectionID model.ConnectionID) (*model.Session, error) {
	unlock := c.locks.lock(string(sessionID))
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionWaiting {
		return nil, model.ErrInvalidSessionState
	}
	if session.HasPlayer(playerID) {
		return session, nil
	}

	player, err := c.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	session.Players = append(session.Players, model.SessionPlayer{
		PlayerID:  player.ID,
		Username:  player.Username,
		AvatarURL: player.AvatarURL,
	})
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.broadcaster.ToSession(sessionID, model.Event{
		Type:      model.EventPlayerJoined,
		Timestamp: c.clock.Now(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Payload:   model.PlayerJoinedPayload{PlayerID: playerID, ConnectionID: connectionID},
	})
	return session, nil
}

// Leave removes a player from a non-terminal session. The last player
// leaving cancels the session.
func (c *Controller) Leave(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) error {
	unlock := c.locks.lock(string(sessionID))
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status.IsTerminal() {
		return model.ErrInvalidSessionState
	}
	if !session.HasPlayer(playerID) {
		return model.ErrNotParticipant
	}

	for i, p := range session.Players {
		if p.PlayerID == playerID {
			session.Players = append(session.Players[:i:i], session.Players[i+1:]...)
			break
		}
	}
	session.UpdatedAt = c.clock.Now()

	if len(session.Players) == 0 {
		return c.cancelLocked(ctx, session, "all players left")
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}

	c.broadcaster.ToSession(sessionID, model.Event{
		Type:      model.EventPlayerLeft,
		Timestamp: c.clock.Now(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Payload:   model.PlayerLeftPayload{PlayerID: playerID},
	})
	return nil
}

// Begin moves a session into active play and records the start time
func (c *Controller) Begin(ctx context.Context, sessionID model.SessionID) (*model.Session, error) {
	unlock := c.locks.lock(string(sessionID))
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(model.SessionActive) {
		return nil, model.ErrInvalidSessionState
	}
	if len(session.Players) < 2 {
		return nil, model.ErrInsufficientPlayers
	}

	now := c.clock.Now()
	session.Status = model.SessionActive
	session.StartedAt = &now
	session.UpdatedAt = now

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session started", slog.String("session_id", string(sessionID)))
	return session, nil
}

// PushState relays a participant's in-game state to the session room.
// Nothing is persisted; this is pure fan-out.
func (c *Controller) PushState(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, state map[string]any) error {
	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.HasPlayer(playerID) {
		return model.ErrNotParticipant
	}
	if session.Status != model.SessionActive {
		return model.ErrInvalidSessionState
	}

	c.broadcaster.ToSession(sessionID, model.Event{
		Type:      model.EventGameState,
		Timestamp: c.clock.Now(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Payload:   model.GameStatePayload{PlayerID: playerID, State: state},
	})
	return nil
}

// SubmitResult settles one player's outcome for a session: rewards are
// computed, the MatchResult is appended exactly once, the player directory,
// stats aggregate and leaderboard are updated, and the session finishes on
// the first rank-1 submission or the last expected one.
//
// Duplicate submissions return model.ErrResultAlreadyExists; non-participants
// get model.ErrNotParticipant. A session already finished still accepts
// first-time results from its remaining participants.
func (c *Controller) SubmitResult(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, score, rank int, gameStats map[string]int) (*model.MatchResult, error) {
	unlock := c.locks.lock(string(sessionID))
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasPlayer(playerID) {
		return nil, model.ErrNotParticipant
	}
	switch session.Status {
	case model.SessionWaiting, model.SessionCancelled:
		return nil, model.ErrInvalidSessionState
	}

	reward := c.rewards.ComputeMatchReward(score, rank, session.GameType)

	result := &model.MatchResult{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		PlayerID:     playerID,
		GameType:     session.GameType,
		Score:        score,
		Rank:         rank,
		PointsEarned: reward.Points,
		XPEarned:     reward.XP,
		Stats:        gameStats,
		Rewards:      reward,
		CreatedAt:    c.clock.Now(),
	}

	// The durable append is the idempotency point: a repeat for this
	// (session, player) fails here before any totals change
	if err := c.storage.SaveResult(ctx, result); err != nil {
		return nil, err
	}

	// Once the result is durable a retried submission would be rejected as a
	// duplicate, so transient store failures on the dependent writes are
	// retried here rather than surfaced to the caller
	won := rank == 1
	err = retry.Do(ctx, retry.DefaultConfig(), c.logger, func() error {
		_, err := c.storage.ApplyScoreDelta(ctx, playerID, model.ScoreDelta{
			Points: reward.Points,
			XP:     reward.XP,
			Coins:  reward.Coins,
			Win:    won,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = retry.Do(ctx, retry.DefaultConfig(), c.logger, func() error {
		_, err := c.stats.Record(ctx, playerID, session.GameType, stats.Outcome{
			Score:    score,
			Win:      won,
			PlayedAt: c.clock.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = retry.Do(ctx, retry.DefaultConfig(), c.logger, func() error {
		_, err := c.index.IncrementScore(ctx, playerID, reward.Points)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("result settled",
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
		slog.Int("score", score),
		slog.Int("rank", rank),
		slog.Int("points", reward.Points))

	if err := c.maybeFinish(ctx, session, result); err != nil {
		return nil, err
	}
	return result, nil
}

// maybeFinish applies the finished transition when this settlement is the
// rank-1 submission or the last expected one. The transition happens at most
// once; later settlements on an already finished session are recorded without
// re-finishing.
func (c *Controller) maybeFinish(ctx context.Context, session *model.Session, latest *model.MatchResult) error {
	if session.Status == model.SessionFinished {
		return nil
	}

	results, err := c.storage.GetResultsForSession(ctx, session.ID)
	if err != nil {
		return err
	}

	if latest.Rank != 1 && len(results) < len(session.Players) {
		return nil
	}

	now := c.clock.Now()
	session.Status = model.SessionFinished
	session.EndedAt = &now
	session.WinnerID = winnerOf(results)
	session.UpdatedAt = now

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}

	c.broadcaster.ToSession(session.ID, model.Event{
		Type:      model.EventGameFinished,
		Timestamp: now,
		SessionID: session.ID,
		Payload: model.GameFinishedPayload{
			SessionID: session.ID,
			WinnerID:  session.WinnerID,
			Results:   results,
		},
	})

	c.logger.Info("session finished",
		slog.String("session_id", string(session.ID)),
		slog.String("winner_id", string(session.WinnerID)),
		slog.Int("results", len(results)))
	return nil
}

// winnerOf picks the best-ranked settled player
func winnerOf(results []model.MatchResult) model.PlayerID {
	var winner model.PlayerID
	best := 0
	for _, r := range results {
		if best == 0 || r.Rank < best {
			best = r.Rank
			winner = r.PlayerID
		}
	}
	return winner
}

// Cancel aborts a non-terminal session. No rewards are computed; the room is
// notified. Racing against a concurrent SubmitResult, exactly one terminal
// transition wins and the loser sees ErrInvalidSessionState.
func (c *Controller) Cancel(ctx context.Context, sessionID model.SessionID, reason string) error {
	unlock := c.locks.lock(string(sessionID))
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	return c.cancelLocked(ctx, session, reason)
}

func (c *Controller) cancelLocked(ctx context.Context, session *model.Session, reason string) error {
	if !session.Status.CanTransitionTo(model.SessionCancelled) {
		return model.ErrInvalidSessionState
	}

	now := c.clock.Now()
	session.Status = model.SessionCancelled
	session.EndedAt = &now
	session.UpdatedAt = now

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}

	c.broadcaster.ToSession(session.ID, model.Event{
		Type:      model.EventGameCancelled,
		Timestamp: now,
		SessionID: session.ID,
		Payload:   model.GameCancelledPayload{SessionID: session.ID, Reason: reason},
	})

	c.logger.Info("session cancelled",
		slog.String("session_id", string(session.ID)),
		slog.String("reason", reason))
	return nil
}

// Results returns every settled result for a session
func (c *Controller) Results(ctx context.Context, sessionID model.SessionID) ([]model.MatchResult, error) {
	if _, err := c.storage.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return c.storage.GetResultsForSession(ctx, sessionID)
}

func (c *Controller) newSessionID() model.SessionID {
	return model.SessionID("sess_" + c.random.String(SessionIDLength, random.SessionIDAlphabet))
}
