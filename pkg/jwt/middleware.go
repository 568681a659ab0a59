package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type claimsCtxKey struct{}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, c)
}

// ClaimsFromContext returns the verified claims of the request, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey{}).(*Claims)
	return c, ok && c != nil
}

// UserID returns the authenticated user ID stored by Middleware.
func UserID(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}

// ErrorHandler renders authentication failures.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures Middleware and RequireAuth.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	onError ErrorHandler
}

// WithErrorHandler overrides the default plain 401 response.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.onError = h
		}
	}
}

func newMiddlewareConfig(opts []MiddlewareOption) *middlewareConfig {
	cfg := &middlewareConfig{
		onError: func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Middleware verifies a Bearer token when one is present. Requests without
// an Authorization header pass through anonymously; a present but invalid
// token is rejected.
func Middleware(svc *Service, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if svc == nil {
		panic("jwt: Service is required")
	}
	cfg := newMiddlewareConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if errors.Is(err, ErrMissingToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				cfg.onError(w, r, err)
				return
			}

			claims, err := svc.Parse(token)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth rejects requests that carry no verified identity.
func RequireAuth(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := newMiddlewareConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserID(r.Context()); !ok {
				cfg.onError(w, r, ErrMissingToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}
