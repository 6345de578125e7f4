// Package ratelimit provides the fixed-window limiter used to throttle
// credential endpoints.
package ratelimit

import (
	"context"
	"time"
)

// window is the fixed window length for login attempts.
const window = time.Minute

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}
