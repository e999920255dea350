package handler

import (
	"context"
	"log/slog"

	"github.com/minisport/arena/internal/retry"
)

// withRetry runs fn with the bounded store-failure retry policy. Transient
// store errors that survive all attempts still reach the client as 503.
func withRetry(ctx context.Context, logger *slog.Logger, fn func() error) error {
	return retry.Do(ctx, retry.DefaultConfig(), logger, fn)
}
