package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type statusErr struct {
	code  int
	after time.Duration
}

func (e statusErr) Error() string             { return fmt.Sprintf("status %d", e.code) }
func (e statusErr) StatusCode() int           { return e.code }
func (e statusErr) RetryAfter() time.Duration { return e.after }

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestDoRetriesServerErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		if calls < 3 {
			return statusErr{code: 502}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoStopsOnClientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		return statusErr{code: 403}
	})
	require.Equal(t, statusErr{code: 403}, err)
	require.Equal(t, 1, calls)
}

func TestDoStopsOnFatal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		return &FatalError{Err: statusErr{code: 500}}
	})
	var fatal *FatalError
	require.True(t, errors.As(err, &fatal))
	require.Equal(t, 500, Status(err))
	require.Equal(t, 1, calls)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		return statusErr{code: 503}
	})
	require.ErrorIs(t, err, ErrAttempts)
	require.Equal(t, 503, Status(err))
	require.Equal(t, 4, calls)
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.RateLimitDelay = time.Hour
	err := Do(ctx, nil, cfg, func() error {
		cancel()
		return statusErr{code: 429}
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitLowersLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 10, 1, 0.5)
	calls := 0
	err := Do(context.Background(), lim, fastConfig(), func() error {
		calls++
		if calls == 1 {
			return statusErr{code: 429, after: time.Millisecond}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 4.0, lim.Limit(), "halved and not raised again during cooldown")
}

func TestLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(50, 2, 10, 5, 0.1)
	require.Equal(t, 10.0, lim.Limit())
	lim.RateLimited()
	require.Equal(t, 2.0, lim.Limit())

	lim.cooldown = 0
	lim.lastError = time.Time{}
	lim.Success()
	lim.Success()
	require.Equal(t, 10.0, lim.Limit())
}
