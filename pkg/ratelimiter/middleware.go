package ratelimiter

import (
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
)

const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request. An empty key skips
// limiting for that request.
type KeyFunc func(r *http.Request) string

// Composite joins the non-empty keys of several KeyFuncs. Keys longer than
// 64 bytes are replaced by their FNV-1a hash.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}
		h := fnv.New64a()
		h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// ByUser keys requests by the authenticated user id found in the request
// context. Anonymous requests get an empty key.
func ByUser(userID func(context.Context) (string, bool)) KeyFunc {
	return func(r *http.Request) string {
		id, ok := userID(r.Context())
		if !ok || id == "" {
			return ""
		}
		return "user:" + id
	}
}

// ErrorHandler answers a request that was denied (ErrLimitExceeded) or could
// not be checked (any other error).
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareOptions struct {
	errorHandler ErrorHandler
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareOptions)

// WithErrorHandler replaces the plain-text error responses.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(o *middlewareOptions) { o.errorHandler = h }
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrLimitExceeded) {
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}
	http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
}

// Middleware limits requests per key and sets the X-RateLimit-* headers.
func Middleware(l Limiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := l.Allow(r.Context(), key)
			if err != nil {
				o.errorHandler(w, r, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if secs := int(result.RetryAfter().Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				o.errorHandler(w, r, ErrLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
