package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestRetryDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryDo_RetriesRateLimit(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &googleapi.Error{Code: 429, Message: "rate limited"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryDo_DoesNotRetryClientError(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return &googleapi.Error{Code: 400, Message: "bad request"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	wantErr := &googleapi.Error{Code: 503, Message: "unavailable"}
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 503, apiErr.Code)
}

func TestRetryDo_CancellationWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastPolicy().Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return &googleapi.Error{Code: 429}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryDo_ZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxAttempts: 0, BaseDelay: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestConfigGetModel(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierStandard))
	// Unknown tiers fall back to lite.
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(ModelTier("pro")))

	empty := &Config{Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.GetModel(TierStandard))
}
