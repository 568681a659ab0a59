package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter: capacity, refill rate and interval must be positive")
	ErrInvalidTokenCount = errors.New("ratelimiter: token count must be positive")
	ErrStoreUnavailable  = errors.New("ratelimiter: store unavailable")
	ErrLimitExceeded     = errors.New("rate limit exceeded")
)
