package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"matchtrack/internal/domain/ratelimit"
)

// RateLimitRepo 以 rate_limits 資料表實作固定視窗限流。
// 視窗過期時計數歸一並展延 reset_at，否則累加。
type RateLimitRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewRateLimitRepo 建立 RateLimitRepo。
func NewRateLimitRepo(db *sql.DB) *RateLimitRepo {
	return &RateLimitRepo{db: db, now: time.Now}
}

// Hit 對 key 計數一次並回傳判定。
func (r *RateLimitRepo) Hit(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error) {
	now := r.now()
	resetAt := now.Add(window)

	const q = `
INSERT INTO rate_limits (key, count, reset_at)
VALUES ($1, 1, $2)
ON CONFLICT (key) DO UPDATE SET
    count = CASE
        WHEN rate_limits.reset_at > now() THEN rate_limits.count + 1
        ELSE 1
    END,
    reset_at = CASE
        WHEN rate_limits.reset_at > now() THEN rate_limits.reset_at
        ELSE $2
    END
RETURNING count, reset_at;
`
	var count int
	var winReset time.Time
	if err := r.db.QueryRowContext(ctx, q, key, resetAt).Scan(&count, &winReset); err != nil {
		return ratelimit.Decision{}, fmt.Errorf("rate limit hit: %w", err)
	}

	retryAfter := winReset.Sub(now)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return ratelimit.Decision{
		Limited:    count > limit,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}, nil
}

var _ ratelimit.Limiter = (*RateLimitRepo)(nil)
