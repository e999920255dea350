package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/minisport/arena/internal/broadcast/sse"
	"github.com/minisport/arena/internal/dependencies/clock"
	"github.com/minisport/arena/internal/dependencies/random"
	"github.com/minisport/arena/internal/metrics"
	"github.com/minisport/arena/internal/services/leaderboard"
	"github.com/minisport/arena/internal/services/matchqueue"
	"github.com/minisport/arena/internal/services/players"
	"github.com/minisport/arena/internal/services/rewards"
	"github.com/minisport/arena/internal/services/session"
	"github.com/minisport/arena/internal/services/stats"
	"github.com/minisport/arena/internal/storage"
	"github.com/minisport/arena/internal/storage/memory"
	redisstorage "github.com/minisport/arena/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	PlayerService     *players.Service
	RewardEngine      *rewards.Engine
	StatsService      *stats.Aggregator
	LeaderboardIndex  leaderboard.Index
	SessionController *session.Controller
	QueueService      *matchqueue.Service

	// Transport
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster

	// Observability
	Metrics *metrics.Metrics
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// QueueConfig holds matchmaking settings (optional)
	// If zero value, defaults to matchqueue.DefaultConfig()
	QueueConfig matchqueue.Config
	// PlayersConfig holds login session settings (optional)
	// If zero value, defaults to players.DefaultConfig()
	PlayersConfig players.Config
	// RewardConfig holds the fixed reward values (optional)
	// If zero value, defaults to rewards.DefaultConfig()
	RewardConfig rewards.Config
	// LeaderboardCacheTTL enables the cached index when positive; zero
	// serves reads from the live score index
	LeaderboardCacheTTL time.Duration
	// EnableMetrics wires a Prometheus registry into the app
	EnableMetrics bool
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	queueCfg := cfg.QueueConfig
	if queueCfg.MaxDepth == 0 && queueCfg.EntryMaxAge == 0 {
		queueCfg = matchqueue.DefaultConfig()
	}
	playersCfg := cfg.PlayersConfig
	if playersCfg.SessionDuration == 0 {
		playersCfg = players.DefaultConfig()
	}
	rewardCfg := cfg.RewardConfig
	if rewardCfg == (rewards.Config{}) {
		rewardCfg = rewards.DefaultConfig()
	}

	var m *metrics.Metrics
	if cfg.EnableMetrics {
		m = metrics.New()
	}

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	var index leaderboard.Index
	if cfg.LeaderboardCacheTTL > 0 {
		index = leaderboard.NewCached(store, clk, cfg.LeaderboardCacheTTL, logger)
	} else {
		index = leaderboard.NewLive(store, logger)
	}

	playerService := players.New(store, clk, playersCfg, logger)
	rewardEngine := rewards.New(rewardCfg)
	statsService := stats.New(store, clk, logger)
	sessionController := session.NewController(store, rewardEngine, statsService, index, broadcaster, clk, rnd, logger)
	queueService := matchqueue.New(store, sessionController, broadcaster, clk, queueCfg, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		PlayerService:     playerService,
		RewardEngine:      rewardEngine,
		StatsService:      statsService,
		LeaderboardIndex:  index,
		SessionController: sessionController,
		QueueService:      queueService,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		Metrics:           m,
	}
}
