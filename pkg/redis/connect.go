package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses the URL, creates a client and waits until it answers PING.
// The whole attempt is bounded by ConnectTimeout.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client := redis.NewClient(opts)
	var lastErr error
	for i := range max(cfg.RetryAttempts, 1) {
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, lastErr)
}
