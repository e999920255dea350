package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/minisport/arena/internal/model"
)

// Config controls bounded retries of transient store failures
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultConfig returns default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   50 * time.Millisecond,
	}
}

// Do runs fn, retrying on model.ErrStoreUnavailable with linear backoff.
// Any other error returns immediately; the last store error is returned once
// attempts are exhausted.
func Do(ctx context.Context, cfg Config, logger *slog.Logger, fn func() error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, model.ErrStoreUnavailable) {
			return err
		}
		if attempt == attempts {
			break
		}

		logger.Warn("store unavailable, retrying",
			slog.Int("attempt", attempt),
			slog.Any("error", err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.BaseDelay * time.Duration(attempt)):
		}
	}
	return err
}
