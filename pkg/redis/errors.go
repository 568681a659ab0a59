package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready in time")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL, set REDIS_URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)
