package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state. ConsumeTokens takes tokens only when enough are
// left; a denied call reports a negative remaining count and leaves the
// bucket untouched.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}
