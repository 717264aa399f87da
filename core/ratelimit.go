package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
)

// RateLimiter bounds how many runs a user may create in a sliding window.
// The count comes from the store, so limits hold across processes.
type RateLimiter struct {
	store  contract.RunStore
	max    int
	window time.Duration
	now    contract.Clock
}

// NewRateLimiter creates a limiter over store with the default limits.
func NewRateLimiter(store contract.RunStore, now contract.Clock) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		store:  store,
		max:    schema.RateLimitMaxRuns,
		window: schema.RateLimitWindowMinutes * time.Minute,
		now:    now,
	}
}

// Window returns the sliding window length.
func (l *RateLimiter) Window() time.Duration { return l.window }

// Check fails with RateLimited when userID already created max runs in the window.
func (l *RateLimiter) Check(ctx context.Context, userID string) error {
	since := l.now().Add(-l.window)
	count, err := l.store.CountRunsSince(ctx, userID, since)
	if err != nil {
		return schema.WrapError(schema.KindStorageError, "count recent runs", err)
	}
	if count >= l.max {
		return schema.NewError(schema.KindRateLimited,
			fmt.Sprintf("rate limit exceeded: %d audits per %s", l.max, l.window))
	}
	return nil
}
