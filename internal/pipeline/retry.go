package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/dgallion1/mdsite/internal/sitestore"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *sitestore.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// retry calls fn up to MaxRetries times while it fails with a retryable
// error, sleeping backoff(attempt) in between.
func retry(ctx context.Context, log *slog.Logger, op string, backoff func(int) time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable store error", "op", op, "attempt", attempt, "error", err)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
