// Package config defines service configuration and its loading order.
package config

import (
	"time"
)

// Config contains process configuration
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error
	LogLevel string `koanf:"log_level"`

	// Host and Port configure the HTTP listen address
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// StorageType selects the storage backend: memory or redis
	StorageType string `koanf:"storage_type"`

	// RedisURL is the Redis connection string when StorageType is redis
	RedisURL string `koanf:"redis_url"`

	// QueueMaxDepth bounds each matchmaking queue
	QueueMaxDepth int `koanf:"queue_max_depth"`

	// QueueEntryMaxAge is how long a queue entry may wait before pruning
	QueueEntryMaxAge time.Duration `koanf:"queue_entry_max_age"`

	// LeaderboardCacheTTL enables the cached leaderboard index when positive;
	// zero serves every read from the live score index
	LeaderboardCacheTTL time.Duration `koanf:"leaderboard_cache_ttl"`

	// LeaderboardRebuildInterval is how often the full index rebuild runs
	LeaderboardRebuildInterval time.Duration `koanf:"leaderboard_rebuild_interval"`

	// QueuePruneInterval is how often stale queue entries are swept
	QueuePruneInterval time.Duration `koanf:"queue_prune_interval"`

	// LoginSessionDuration is how long an auth token stays valid
	LoginSessionDuration time.Duration `koanf:"login_session_duration"`
}

// Default returns the configuration defaults
func Default() Config {
	return Config{
		LogLevel:                   "info",
		Host:                       "",
		Port:                       8080,
		StorageType:                "memory",
		RedisURL:                   "redis://localhost:6379",
		QueueMaxDepth:              1000,
		QueueEntryMaxAge:           2 * time.Minute,
		LeaderboardCacheTTL:        0,
		LeaderboardRebuildInterval: 5 * time.Minute,
		QueuePruneInterval:         30 * time.Second,
		LoginSessionDuration:       24 * time.Hour,
	}
}
