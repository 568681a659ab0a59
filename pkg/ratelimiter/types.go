package ratelimiter

import "time"

// Result is the outcome of one check.
type Result struct {
	Limit     int
	Remaining int // negative when the request was denied
	ResetAt   time.Time
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is zero for allowed requests.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Config describes a token bucket.
type Config struct {
	Capacity       int           // burst size
	RefillRate     int           // tokens added per interval
	RefillInterval time.Duration
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return ErrInvalidConfig
	case c.RefillRate <= 0:
		return ErrInvalidConfig
	case c.RefillInterval <= 0:
		return ErrInvalidConfig
	}
	return nil
}

// ttl is how long an idle bucket takes to refill completely, after which its
// state is indistinguishable from a fresh one.
func (c Config) ttl() time.Duration {
	return time.Duration(c.Capacity/c.RefillRate+1) * c.RefillInterval
}
