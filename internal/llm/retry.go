// retry.go holds the single retry/backoff utility applied to every
// knowledge-service call. The knowledge service is the only collaborator
// with an externally imposed rate limit (HTTP 429-class responses).
package llm

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"google.golang.org/api/googleapi"
)

// RetryPolicy configures exponential backoff for rate-limited calls.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns the backoff used for knowledge-service calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseDelay: 500 * time.Millisecond}
}

// Do runs op, retrying transient failures with exponential backoff and
// jitter. Context cancellation always wins over the retry budget.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if i < attempts-1 && !sleepCtx(ctx, p.backoff(i)) {
			return ctx.Err()
		}
	}
	return lastErr
}

// retryable reports whether an error is worth another attempt. Rate limits
// and server-side failures are transient; everything else is not.
func retryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	// Non-API errors from the transport (resets, timeouts) are treated as
	// transient. Context errors are handled by the caller.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// backoff doubles the base delay each attempt with up to +50% jitter.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	d := base * time.Duration(1<<attempt)
	return d + time.Duration(rand.Int63n(int64(d)/2+1))
}

// sleepCtx waits for d or returns false if ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
