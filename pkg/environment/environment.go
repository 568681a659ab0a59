// Package environment names the deployment environments the service runs in.
package environment

import (
	"context"
	"strings"
)

// Environment represents application environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse maps common spellings to an Environment, defaulting to Development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

type contextKey struct{}

// WithContext stores env in ctx.
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext returns the stored environment, or Development when absent.
func FromContext(ctx context.Context) Environment {
	if env, ok := ctx.Value(contextKey{}).(Environment); ok {
		return env
	}
	return Development
}

// IsProduction reports whether ctx carries the production environment.
func IsProduction(ctx context.Context) bool {
	return FromContext(ctx) == Production
}
