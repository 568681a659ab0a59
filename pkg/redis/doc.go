// Package redis connects to Redis with go-redis and exposes a readiness probe.
package redis
