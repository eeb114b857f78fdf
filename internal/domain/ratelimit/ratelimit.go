package ratelimit

import (
	"context"
	"time"
)

// Decision 為一次固定視窗計數後的判定結果。
type Decision struct {
	Limited    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter 以 key 為單位做固定視窗限流。
type Limiter interface {
	// Hit 對 key 計數一次並回傳是否超限。
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
