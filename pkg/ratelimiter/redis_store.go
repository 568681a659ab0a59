package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// The bucket is a hash {t: tokens, r: last refill ms}. Denied calls do not
// write tokens back.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local want = tonumber(ARGV[4])
local now = tonumber(ARGV[5])
local ttl = tonumber(ARGV[6])

local state = redis.call('HMGET', KEYS[1], 't', 'r')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
	tokens = capacity
	last = now
end

local intervals = math.floor((now - last) / interval)
if intervals > 0 then
	tokens = math.min(tokens + intervals * rate, capacity)
	if tokens >= capacity then
		last = now
	else
		last = last + intervals * interval
	end
end

local remaining = tokens - want
if remaining >= 0 then
	tokens = remaining
end

redis.call('HSET', KEYS[1], 't', tokens, 'r', last)
redis.call('PEXPIRE', KEYS[1], ttl)
return {remaining, last + interval}
`)

// RedisStore shares buckets across instances through Redis.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a RedisStore. Keys are written as {prefix}:ratelimit:{key}.
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix != "" {
		prefix += ":"
	}
	return &RedisStore{rdb: rdb, prefix: prefix + "ratelimit:", now: time.Now}
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	res, err := consumeScript.Run(ctx, s.rdb, []string{s.prefix + key},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		tokens,
		s.now().UnixMilli(),
		cfg.ttl().Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrStoreUnavailable
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
