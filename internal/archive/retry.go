package archive

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy controls how a failing day is retried: a fixed delay
// between attempts and an optional cap on attempts. The delay does not
// grow and carries no jitter.
type RetryPolicy struct {
	Delay       time.Duration
	MaxAttempts uint64 // 0 = unlimited
}

// DefaultRetryPolicy waits ten seconds between attempts, without
// bound.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delay: 10 * time.Second}
}

// backOff builds the policy's backoff chain, honoring cancellation.
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var bo backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	if p.MaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, p.MaxAttempts-1)
	}
	return backoff.WithContext(bo, ctx)
}
