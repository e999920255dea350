package redis

import (
	"fmt"

	"github.com/minisport/arena/internal/model"
)

// Key prefix for all arena data
const keyPrefix = "arena"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playerKeyPattern matches every player key, for SCAN
func playerKeyPattern() string {
	return fmt.Sprintf("%s:player:*", keyPrefix)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// resultKey returns the Redis key for a MatchResult
func resultKey(sessionID model.SessionID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:result:%s:%s", keyPrefix, sessionID, playerID)
}

// resultsForSessionIndexKey returns the Redis key for the SET of results for a session
func resultsForSessionIndexKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:idx:results_for_session:%s", keyPrefix, sessionID)
}

// statsKey returns the Redis key for per-game-type PlayerStats
func statsKey(playerID model.PlayerID, gameType model.GameType) string {
	return fmt.Sprintf("%s:stats:%s:%s", keyPrefix, playerID, gameType)
}

// queueListKey returns the Redis key for a matchmaking queue's FIFO list
func queueListKey(key model.QueueKey) string {
	return fmt.Sprintf("%s:queue:%s", keyPrefix, key)
}

// queueEntriesKey returns the Redis key for the HASH of a queue's entries by player
func queueEntriesKey(key model.QueueKey) string {
	return fmt.Sprintf("%s:queue_entries:%s", keyPrefix, key)
}

// queueRegistryKey returns the Redis key for the SET of known queue keys
func queueRegistryKey() string {
	return fmt.Sprintf("%s:idx:queues", keyPrefix)
}

// scoresKey returns the Redis key for the leaderboard ZSET
func scoresKey() string {
	return fmt.Sprintf("%s:scores", keyPrefix)
}

// scoresRebuildKey returns the staging key used while rebuilding the leaderboard
func scoresRebuildKey() string {
	return fmt.Sprintf("%s:scores:rebuild", keyPrefix)
}
