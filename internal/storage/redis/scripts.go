package redis

import "github.com/redis/go-redis/v9"

// The queue scripts keep the FIFO list and the entry hash for a queue key in
// lockstep. Running them as Lua makes each operation atomic against every
// other queue mutation, which is what guarantees an entry is paired or
// removed exactly once even with multiple server instances on one Redis.

// enqueueScript rejects duplicate players and full queues, then appends.
// KEYS: [1] queue list, [2] entry hash, [3] queue registry
// ARGV: [1] player ID, [2] entry JSON, [3] max depth (0 = unbounded), [4] registry member
// Returns the 1-based queue position, -1 for a duplicate, -2 when full.
var enqueueScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[2], ARGV[1]) == 1 then
  return -1
end
local depth = tonumber(ARGV[3])
if depth > 0 and redis.call("LLEN", KEYS[1]) >= depth then
  return -2
end
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
redis.call("SADD", KEYS[3], ARGV[4])
return redis.call("RPUSH", KEYS[1], ARGV[1])
`)

// dequeuePairScript pops the two oldest entries, or nothing below two.
// KEYS: [1] queue list, [2] entry hash
// Returns {entry1 JSON, entry2 JSON} or an empty table.
var dequeuePairScript = redis.NewScript(`
if redis.call("LLEN", KEYS[1]) < 2 then
  return {}
end
local first = redis.call("LPOP", KEYS[1])
local second = redis.call("LPOP", KEYS[1])
local e1 = redis.call("HGET", KEYS[2], first)
local e2 = redis.call("HGET", KEYS[2], second)
redis.call("HDEL", KEYS[2], first, second)
if not e1 or not e2 then
  return {}
end
return {e1, e2}
`)

// removeEntryScript removes at most one entry for a player.
// KEYS: [1] queue list, [2] entry hash
// ARGV: [1] player ID
// Returns the removed entry JSON, or false when the player is not queued.
var removeEntryScript = redis.NewScript(`
local entry = redis.call("HGET", KEYS[2], ARGV[1])
if not entry then
  return false
end
redis.call("LREM", KEYS[1], 1, ARGV[1])
redis.call("HDEL", KEYS[2], ARGV[1])
return entry
`)
