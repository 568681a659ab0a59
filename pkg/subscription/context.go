package subscription

import (
	"context"
	"net/http"
)

type entitlementsCtxKey struct{}

// SetEntitlementsToContext stores the request's entitlement snapshot.
func SetEntitlementsToContext(ctx context.Context, e Entitlements) context.Context {
	return context.WithValue(ctx, entitlementsCtxKey{}, e)
}

// EntitlementsFromContext returns the snapshot stored by Middleware.
// The second value is false when no snapshot was stored.
func EntitlementsFromContext(ctx context.Context) (Entitlements, bool) {
	e, ok := ctx.Value(entitlementsCtxKey{}).(Entitlements)
	return e, ok
}

// TierFromContext returns the request's tier, defaulting to free.
func TierFromContext(ctx context.Context) Tier {
	if e, ok := EntitlementsFromContext(ctx); ok {
		return e.Tier
	}
	return TierFree
}

// UserIDFunc extracts the authenticated user ID from a request context.
type UserIDFunc func(ctx context.Context) (string, bool)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

// WithMiddlewareErrorHandler sets how resolution failures are rendered.
func WithMiddlewareErrorHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onError = fn
		}
	}
}

// Middleware resolves the tier once per request and stores the snapshot in the
// request context. Anonymous requests get the free snapshot. The snapshot lives
// only as long as the request.
func Middleware(resolver TierResolver, userID UserIDFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("subscription: TierResolver is required")
	}
	if userID == nil {
		panic("subscription: UserIDFunc is required")
	}

	cfg := &middlewareConfig{
		onError: func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "internal_server_error", http.StatusInternalServerError)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tier := TierFree
			if id, ok := userID(ctx); ok && id != "" {
				resolved, err := resolver.Resolve(ctx, id)
				if err != nil {
					cfg.onError(w, r, err)
					return
				}
				tier = resolved
			}

			ctx = SetEntitlementsToContext(ctx, EntitlementsFor(tier))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
