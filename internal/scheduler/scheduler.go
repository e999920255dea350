// Package scheduler runs the recurring maintenance jobs: the full
// leaderboard rebuild, the stale queue sweep, and login session cleanup.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/minisport/arena/internal/metrics"
	"github.com/minisport/arena/internal/services/leaderboard"
	"github.com/minisport/arena/internal/services/matchqueue"
	"github.com/minisport/arena/internal/services/players"
)

// Config holds the job intervals
type Config struct {
	LeaderboardRebuildInterval time.Duration
	QueuePruneInterval         time.Duration
	SessionCleanupInterval     time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		LeaderboardRebuildInterval: 5 * time.Minute,
		QueuePruneInterval:         30 * time.Second,
		SessionCleanupInterval:     time.Hour,
	}
}

// Scheduler owns the gocron instance and its jobs
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// New creates a scheduler with all maintenance jobs registered but not
// started
func New(
	cfg Config,
	index leaderboard.Index,
	queueService *matchqueue.Service,
	playerService *players.Service,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	log := logger.With(slog.String("component", "scheduler"))

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.LeaderboardRebuildInterval),
		gocron.NewTask(func() {
			start := time.Now()
			if err := index.Rebuild(context.Background()); err != nil {
				log.Error("leaderboard rebuild failed", slog.Any("error", err))
				return
			}
			duration := time.Since(start)
			if m != nil {
				m.RebuildDuration.Observe(duration.Seconds())
			}
			log.Info("leaderboard rebuilt", slog.Duration("duration", duration))
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.QueuePruneInterval),
		gocron.NewTask(func() {
			pruned, err := queueService.Prune(context.Background())
			if err != nil {
				log.Error("queue prune failed", slog.Any("error", err))
				return
			}
			if m != nil && pruned > 0 {
				m.QueuePrunes.Add(float64(pruned))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.SessionCleanupInterval),
		gocron.NewTask(playerService.CleanExpiredSessions),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{scheduler: sched, logger: log}, nil
}

// Start begins running the registered jobs
func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("maintenance jobs started")
}

// Stop shuts the scheduler down, waiting for running jobs to finish
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
