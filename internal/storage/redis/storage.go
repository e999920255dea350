package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/storage"
)

// maxTxRetries bounds optimistic WATCH transactions on contended player keys
const maxTxRetries = 5

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, storeErr(err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// storeErr marks a Redis failure as transient so callers can retry
func storeErr(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, playerKey(player.ID), data, s.playerTTL(player)).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

// playerTTL applies a TTL only for guest players
func (s *Storage) playerTTL(player *model.Player) time.Duration {
	if player.IsGuest {
		return s.cfg.GuestPlayerTTL
	}
	return 0
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storeErr(err)
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if err := s.client.Del(ctx, playerKey(id)).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var keys []string
	var cursor uint64
	for {
		page, next, err := s.client.Scan(ctx, cursor, playerKeyPattern(), 100).Result()
		if err != nil {
			return nil, storeErr(err)
		}
		keys = append(keys, page...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return []*model.Player{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &player)
	}

	return players, nil
}

func (s *Storage) ApplyScoreDelta(ctx context.Context, id model.PlayerID, delta model.ScoreDelta) (*model.Player, error) {
	key := playerKey(id)
	var updated *model.Player

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var player model.Player
		if err := json.Unmarshal(data, &player); err != nil {
			return err
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

		next, err := json.Marshal(&player)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.playerTTL(&player))
			return nil
		})
		if err != nil {
			return err
		}
		updated = &player
		return nil
	}

	// Optimistic concurrency: retry when another writer touches the key
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, model.ErrPlayerNotFound):
			return nil, err
		default:
			return nil, storeErr(err)
		}
	}
	return nil, storeErr(redis.TxFailedErr)
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0) // No TTL
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	data, err := s.client.Get(ctx, registeredPlayerKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storeErr(err)
	}

	var rp model.RegisteredPlayer
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	// Look up player ID from username index
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, storeErr(err)
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, storeErr(err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

// Match result operations

func (s *Storage) SaveResult(ctx context.Context, result *model.MatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	key := resultKey(result.SessionID, result.PlayerID)

	// SETNX makes the append-once guarantee: a second submission for the
	// same (session, player) loses the race and is rejected
	set, err := s.client.SetNX(ctx, key, data, s.cfg.ResultTTL).Result()
	if err != nil {
		return storeErr(err)
	}
	if !set {
		return model.ErrResultAlreadyExists
	}

	indexKey := resultsForSessionIndexKey(result.SessionID)
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, s.cfg.ResultTTL) // Keep index TTL in sync
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Storage) GetResult(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.MatchResult, error) {
	data, err := s.client.Get(ctx, resultKey(sessionID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrResultNotFound
		}
		return nil, storeErr(err)
	}

	var result model.MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Storage) GetResultsForSession(ctx context.Context, sessionID model.SessionID) ([]model.MatchResult, error) {
	resultKeys, err := s.client.SMembers(ctx, resultsForSessionIndexKey(sessionID)).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	if len(resultKeys) == 0 {
		return []model.MatchResult{}, nil
	}

	values, err := s.client.MGet(ctx, resultKeys...).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	results := make([]model.MatchResult, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Result may have expired
		}
		var result model.MatchResult
		if err := json.Unmarshal([]byte(val.(string)), &result); err != nil {
			continue // Skip invalid data
		}
		results = append(results, result)
	}

	return results, nil
}

// Player stats operations

func (s *Storage) SaveStats(ctx context.Context, stats *model.PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, statsKey(stats.PlayerID, stats.GameType), data, 0).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Storage) GetStats(ctx context.Context, playerID model.PlayerID, gameType model.GameType) (*model.PlayerStats, error) {
	data, err := s.client.Get(ctx, statsKey(playerID, gameType)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrStatsNotFound
		}
		return nil, storeErr(err)
	}

	var stats model.PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Queue operations

func (s *Storage) EnqueueEntry(ctx context.Context, key model.QueueKey, entry model.QueueEntry, maxDepth int) (int, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return 0, err
	}

	pos, err := enqueueScript.Run(ctx, s.client,
		[]string{queueListKey(key), queueEntriesKey(key), queueRegistryKey()},
		string(entry.PlayerID), data, maxDepth, key.String(),
	).Int()
	if err != nil {
		return 0, storeErr(err)
	}

	switch pos {
	case -1:
		return 0, model.ErrAlreadyQueued
	case -2:
		return 0, model.ErrQueueFull
	default:
		return pos, nil
	}
}

func (s *Storage) DequeuePair(ctx context.Context, key model.QueueKey) (*model.QueueEntry, *model.QueueEntry, error) {
	raw, err := dequeuePairScript.Run(ctx, s.client,
		[]string{queueListKey(key), queueEntriesKey(key)},
	).StringSlice()
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if len(raw) < 2 {
		return nil, nil, nil
	}

	var first, second model.QueueEntry
	if err := json.Unmarshal([]byte(raw[0]), &first); err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal([]byte(raw[1]), &second); err != nil {
		return nil, nil, err
	}
	return &first, &second, nil
}

func (s *Storage) RemoveQueueEntry(ctx context.Context, key model.QueueKey, playerID model.PlayerID) (*model.QueueEntry, error) {
	raw, err := removeEntryScript.Run(ctx, s.client,
		[]string{queueListKey(key), queueEntriesKey(key)},
		string(playerID),
	).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, storeErr(err)
	}

	var entry model.QueueEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Storage) QueueLength(ctx context.Context, key model.QueueKey) (int, error) {
	length, err := s.client.LLen(ctx, queueListKey(key)).Result()
	if err != nil {
		return 0, storeErr(err)
	}
	return int(length), nil
}

func (s *Storage) QueueEntries(ctx context.Context, key model.QueueKey) ([]model.QueueEntry, error) {
	ids, err := s.client.LRange(ctx, queueListKey(key), 0, -1).Result()
	if err != nil {
		return nil, storeErr(err)
	}
	if len(ids) == 0 {
		return []model.QueueEntry{}, nil
	}

	values, err := s.client.HMGet(ctx, queueEntriesKey(key), ids...).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	entries := make([]model.QueueEntry, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var entry model.QueueEntry
		if err := json.Unmarshal([]byte(val.(string)), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Storage) QueueKeys(ctx context.Context) ([]model.QueueKey, error) {
	members, err := s.client.SMembers(ctx, queueRegistryKey()).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	keys := make([]model.QueueKey, 0, len(members))
	for _, member := range members {
		gameType, mode, ok := strings.Cut(member, ":")
		if !ok {
			continue
		}
		key := model.QueueKey{GameType: model.GameType(gameType), Mode: model.GameMode(mode)}
		length, err := s.client.LLen(ctx, queueListKey(key)).Result()
		if err != nil {
			return nil, storeErr(err)
		}
		if length > 0 {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Live score index operations

func (s *Storage) IncrementScore(ctx context.Context, playerID model.PlayerID, delta int) (int, error) {
	score, err := s.client.ZIncrBy(ctx, scoresKey(), float64(delta), string(playerID)).Result()
	if err != nil {
		return 0, storeErr(err)
	}
	return int(score), nil
}

// ScoreRank computes a 1-based rank ordered by score descending then player ID
// ascending. ZREVRANK alone cannot express the ID tie-break (Redis orders
// equal scores by reverse lex), so the rank is assembled from two counts.
func (s *Storage) ScoreRank(ctx context.Context, playerID model.PlayerID) (int, error) {
	score, err := s.client.ZScore(ctx, scoresKey(), string(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrPlayerNotRanked
		}
		return 0, storeErr(err)
	}

	higher, err := s.client.ZCount(ctx, scoresKey(), fmt.Sprintf("(%d", int(score)), "+inf").Result()
	if err != nil {
		return 0, storeErr(err)
	}

	ties, err := s.client.ZRangeByScore(ctx, scoresKey(), &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", int(score)),
		Max: fmt.Sprintf("%d", int(score)),
	}).Result()
	if err != nil {
		return 0, storeErr(err)
	}

	rank := int(higher) + 1
	for _, member := range ties {
		if member < string(playerID) {
			rank++
		}
	}
	return rank, nil
}

func (s *Storage) TopScores(ctx context.Context, n int) ([]model.RankedScore, error) {
	if n <= 0 {
		return []model.RankedScore{}, nil
	}

	top, err := s.client.ZRevRangeWithScores(ctx, scoresKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, storeErr(err)
	}
	if len(top) == 0 {
		return []model.RankedScore{}, nil
	}

	// Ties at the boundary score may extend past position n with the wrong
	// members included, so widen to everything at or above the boundary and
	// re-sort with the ID tie-break before truncating
	boundary := int(top[len(top)-1].Score)
	window, err := s.client.ZRangeByScoreWithScores(ctx, scoresKey(), &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", boundary),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	scores := make([]model.RankedScore, 0, len(window))
	for _, z := range window {
		scores = append(scores, model.RankedScore{
			PlayerID: model.PlayerID(z.Member.(string)),
			Score:    int(z.Score),
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].PlayerID < scores[j].PlayerID
	})

	if len(scores) > n {
		scores = scores[:n]
	}
	return scores, nil
}

func (s *Storage) ReplaceScores(ctx context.Context, scores []model.RankedScore) error {
	if len(scores) == 0 {
		if err := s.client.Del(ctx, scoresKey()).Err(); err != nil {
			return storeErr(err)
		}
		return nil
	}

	members := make([]redis.Z, 0, len(scores))
	for _, rs := range scores {
		members = append(members, redis.Z{Score: float64(rs.Score), Member: string(rs.PlayerID)})
	}

	// Stage the rebuilt index under a side key and RENAME it into place so
	// readers never observe a partially populated leaderboard
	pipe := s.client.Pipeline()
	pipe.Del(ctx, scoresRebuildKey())
	pipe.ZAdd(ctx, scoresRebuildKey(), members...)
	pipe.Rename(ctx, scoresRebuildKey(), scoresKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}
