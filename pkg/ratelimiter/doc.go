// Package ratelimiter implements token bucket rate limiting with an
// in-memory store, a Redis store shared across instances, and HTTP
// middleware.
//
// The API uses it to cap calls that cost money on someone else's side:
// forced billing reconciliation and AI drafting.
//
//	store := ratelimiter.NewRedisStore(rdb, "resumekit:reconcile")
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.ByUser(jwt.UserID),
//		ratelimiter.WithErrorHandler(apierr.Write),
//	)).Post("/billing/reconcile", h)
//
// A denied request does not consume tokens. Requests with an empty key pass
// through unchecked.
package ratelimiter
