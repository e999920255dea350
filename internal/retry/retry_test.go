package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/testutil"
)

func fastConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), testutil.NopLogger(), func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesStoreUnavailable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), testutil.NopLogger(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), testutil.NopLogger(), func() error {
		calls++
		return fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable)
	})
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Equal(t, 3, calls)
}

func TestDoDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), testutil.NopLogger(), func() error {
		calls++
		return model.ErrPlayerNotFound
	})
	assert.ErrorIs(t, err, model.ErrPlayerNotFound)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(), testutil.NopLogger(), func() error {
		calls++
		return fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable)
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}
