package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/minisport/arena/internal/api"
	"github.com/minisport/arena/internal/config"
	"github.com/minisport/arena/internal/factory"
	"github.com/minisport/arena/internal/scheduler"
	"github.com/minisport/arena/internal/services/matchqueue"
	"github.com/minisport/arena/internal/services/players"
	redisstorage "github.com/minisport/arena/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		QueueConfig: matchqueue.Config{
			MaxDepth:    cfg.QueueMaxDepth,
			EntryMaxAge: cfg.QueueEntryMaxAge,
		},
		PlayersConfig: players.Config{
			SessionDuration: cfg.LoginSessionDuration,
		},
		LeaderboardCacheTTL: cfg.LeaderboardCacheTTL,
		EnableMetrics:       true,
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		PlayerService:     app.PlayerService,
		StatsService:      app.StatsService,
		SessionController: app.SessionController,
		QueueService:      app.QueueService,
		LeaderboardIndex:  app.LeaderboardIndex,
		HubManager:        app.HubManager,
		Metrics:           app.Metrics,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	schedulerCfg := scheduler.Config{
		LeaderboardRebuildInterval: cfg.LeaderboardRebuildInterval,
		QueuePruneInterval:         cfg.QueuePruneInterval,
		SessionCleanupInterval:     scheduler.DefaultConfig().SessionCleanupInterval,
	}
	jobs, err := scheduler.New(schedulerCfg, app.LeaderboardIndex, app.QueueService, app.PlayerService, app.Metrics, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	jobs.Start()

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := jobs.Stop(); err != nil {
			logger.Error("scheduler stop error", slog.String("error", err.Error()))
		}
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
