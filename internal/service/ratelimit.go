package service

import (
	"context"
	"time"

	"github.com/promptforge/generation-api/internal/model"
	"github.com/promptforge/generation-api/pkg/metrics"
)

const (
	// DefaultUserRateLimit is the number of generations allowed per window.
	DefaultUserRateLimit = 30
	// DefaultUserRateWindow is the trailing window the limit applies to.
	DefaultUserRateWindow = 10 * time.Minute
)

// RateLimiter counts a user's logged generations over a sliding window.
// The count-then-act check is not atomic: concurrent requests from one user
// may briefly exceed the limit.
type RateLimiter struct {
	usage  UsageCounter
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a rate limiter. Non-positive values use the defaults.
func NewRateLimiter(usage UsageCounter, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultUserRateLimit
	}
	if window <= 0 {
		window = DefaultUserRateWindow
	}
	return &RateLimiter{
		usage:  usage,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Check fails with RATE_LIMITED when the user is at or above the limit.
func (l *RateLimiter) Check(ctx context.Context, userID string) error {
	since := l.now().Add(-l.window)

	count, err := l.usage.CountUsageSince(ctx, userID, since)
	if err != nil {
		return model.WrapError(model.ErrInternal, "failed to check rate limit", err)
	}

	if count >= l.limit {
		metrics.RateLimitRejections.Inc()
		return model.Errorf(model.ErrRateLimited,
			"rate limit exceeded: at most %d requests per %s", l.limit, l.window).
			WithDetails(map[string]any{
				"limit":          l.limit,
				"window_seconds": int(l.window.Seconds()),
			})
	}

	return nil
}
