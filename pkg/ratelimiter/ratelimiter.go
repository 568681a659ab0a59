package ratelimiter

import (
	"context"
	"fmt"
)

// Limiter checks a key against a quota.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Bucket is a token bucket Limiter over a Store.
type Bucket struct {
	store Store
	cfg   Config
}

// NewBucket validates cfg and returns a Bucket.
func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, cfg: cfg}, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, ErrInvalidTokenCount
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: b.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
