package postgres

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
)

// Retry runs fn up to attempts times with exponential backoff. Only
// transient failures (connection loss, serialization, resource limits)
// are retried; constraint violations return at once.
func Retry(ctx context.Context, attempts uint, fn func() error, onRetry func(n uint, err error)) error {
	if attempts == 0 {
		attempts = 1
	}
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(100 * time.Millisecond),
		retry.MaxDelay(2 * time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(apperrors.IsTransient),
	}
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(onRetry))
	}
	return retry.Do(fn, opts...)
}
