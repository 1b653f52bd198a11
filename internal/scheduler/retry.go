package scheduler

import (
	"context"
	"errors"
	"time"

	"condenser/internal/domain"
)

// Policy bounds retries for one chunk task. Delay doubles after every failed
// attempt, starting from BaseDelay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}

	return d
}

// retry runs fn up to p.MaxAttempts times, sleeping p.delay between failed
// attempts. It reports the number of attempts made and the last error.
// Permanent initialization failures and context cancellation short-circuit
// the remaining budget.
func retry(ctx context.Context, p Policy, fn func(attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return attempt, nil
		}

		if errors.Is(err, domain.ErrInitFailed) || errors.Is(err, context.Canceled) {
			return attempt, err
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(p.delay(attempt)):
		case <-ctx.Done():
			return attempt, ctx.Err()
		}
	}

	return maxAttempts, err
}
