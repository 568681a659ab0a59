package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumekit/pkg/redis"
)

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost:6379"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

func TestConnect_Live(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  2,
		RetryInterval:  100 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, redis.Healthcheck(client)(context.Background()))
}
