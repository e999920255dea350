package memory

import (
	"context"
	"sync"
	"time"

	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	sessions          map[model.SessionID]*model.Session
	results           map[resultKey]*model.MatchResult
	resultsBySession  map[model.SessionID][]resultKey
	stats             map[statsKey]*model.PlayerStats
	queues            map[model.QueueKey][]model.QueueEntry
	scores            *scoreTreap
}

type resultKey struct {
	sessionID model.SessionID
	playerID  model.PlayerID
}

type statsKey struct {
	playerID model.PlayerID
	gameType model.GameType
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		sessions:          make(map[model.SessionID]*model.Session),
		results:           make(map[resultKey]*model.MatchResult),
		resultsBySession:  make(map[model.SessionID][]resultKey),
		stats:             make(map[statsKey]*model.PlayerStats),
		queues:            make(map[model.QueueKey][]model.QueueEntry),
		scores:            newScoreTreap(),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *player
	s.players[player.ID] = &cp
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		players = append(players, &cp)
	}
	return players, nil
}

func (s *Storage) ApplyScoreDelta(ctx context.Context, id model.PlayerID, delta model.ScoreDelta) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player.TotalPoints += delta.Points
	player.XP += delta.XP
	player.Coins += delta.Coins
	player.GamesPlayed++
	if delta.Win {
		player.Wins++
	} else {
		player.Losses++
	}
	player.Level = model.LevelFromXP(player.XP)
	player.UpdatedAt = time.Now()
	cp := *player
	return &cp, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rp
	s.registeredPlayers[rp.PlayerID] = &cp
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *rp
	return &cp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *rp
	return &cp, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	cp.Players = append([]model.SessionPlayer(nil), session.Players...)
	s.sessions[session.ID] = &cp
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	cp := *session
	cp.Players = append([]model.SessionPlayer(nil), session.Players...)
	return &cp, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Match result operations

func (s *Storage) SaveResult(ctx context.Context, result *model.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := resultKey{sessionID: result.SessionID, playerID: result.PlayerID}
	if _, exists := s.results[key]; exists {
		return model.ErrResultAlreadyExists
	}
	cp := *result
	s.results[key] = &cp
	s.resultsBySession[result.SessionID] = append(s.resultsBySession[result.SessionID], key)
	return nil
}

func (s *Storage) GetResult(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[resultKey{sessionID: sessionID, playerID: playerID}]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	cp := *result
	return &cp, nil
}

func (s *Storage) GetResultsForSession(ctx context.Context, sessionID model.SessionID) ([]model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.resultsBySession[sessionID]
	results := make([]model.MatchResult, 0, len(keys))
	for _, key := range keys {
		if r, ok := s.results[key]; ok {
			results = append(results, *r)
		}
	}
	return results, nil
}

// Player stats operations

func (s *Storage) SaveStats(ctx context.Context, stats *model.PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *stats
	s.stats[statsKey{playerID: stats.PlayerID, gameType: stats.GameType}] = &cp
	return nil
}

func (s *Storage) GetStats(ctx context.Context, playerID model.PlayerID, gameType model.GameType) (*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[statsKey{playerID: playerID, gameType: gameType}]
	if !ok {
		return nil, model.ErrStatsNotFound
	}
	cp := *stats
	return &cp, nil
}

// Queue operations

func (s *Storage) EnqueueEntry(ctx context.Context, key model.QueueKey, entry model.QueueEntry, maxDepth int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[key]
	if maxDepth > 0 && len(queue) >= maxDepth {
		return 0, model.ErrQueueFull
	}
	for _, e := range queue {
		if e.PlayerID == entry.PlayerID {
			return 0, model.ErrAlreadyQueued
		}
	}
	s.queues[key] = append(queue, entry)
	return len(s.queues[key]), nil
}

func (s *Storage) DequeuePair(ctx context.Context, key model.QueueKey) (*model.QueueEntry, *model.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[key]
	if len(queue) < 2 {
		return nil, nil, nil
	}
	first, second := queue[0], queue[1]
	s.queues[key] = append([]model.QueueEntry(nil), queue[2:]...)
	return &first, &second, nil
}

func (s *Storage) RemoveQueueEntry(ctx context.Context, key model.QueueKey, playerID model.PlayerID) (*model.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[key]
	for i, e := range queue {
		if e.PlayerID == playerID {
			removed := e
			s.queues[key] = append(queue[:i:i], queue[i+1:]...)
			return &removed, nil
		}
	}
	return nil, nil
}

func (s *Storage) QueueLength(ctx context.Context, key model.QueueKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queues[key]), nil
}

func (s *Storage) QueueEntries(ctx context.Context, key model.QueueKey) ([]model.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.QueueEntry(nil), s.queues[key]...), nil
}

func (s *Storage) QueueKeys(ctx context.Context) ([]model.QueueKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]model.QueueKey, 0, len(s.queues))
	for key, queue := range s.queues {
		if len(queue) > 0 {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Live score index operations

func (s *Storage) IncrementScore(ctx context.Context, playerID model.PlayerID, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores.add(playerID, delta), nil
}

func (s *Storage) ScoreRank(ctx context.Context, playerID model.PlayerID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rank, ok := s.scores.rank(playerID)
	if !ok {
		return 0, model.ErrPlayerNotRanked
	}
	return rank, nil
}

func (s *Storage) TopScores(ctx context.Context, n int) ([]model.RankedScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores.top(n), nil
}

func (s *Storage) ReplaceScores(ctx context.Context, scores []model.RankedScore) error {
	// Build the replacement off to the side, then swap under the lock so
	// readers never observe a partially rebuilt index
	next := newScoreTreap()
	for _, rs := range scores {
		next.set(rs.PlayerID, rs.Score)
	}
	s.mu.Lock()
	s.scores = next
	s.mu.Unlock()
	return nil
}
