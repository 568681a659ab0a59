package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	expiresAt  time.Time
}

// MemoryStore is a process-local Store. Idle buckets are swept on access.
type MemoryStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket), now: time.Now}
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	ms.sweep(now, cfg.ttl())

	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	// The refill clock advances by whole intervals so partial progress carries
	// over; a full bucket restarts it at now.
	if intervals := int64(now.Sub(b.lastRefill) / cfg.RefillInterval); intervals > 0 {
		if intervals >= int64(cfg.Capacity) {
			b.tokens = cfg.Capacity
		} else {
			b.tokens = min(b.tokens+int(intervals)*cfg.RefillRate, cfg.Capacity)
		}
		if b.tokens == cfg.Capacity {
			b.lastRefill = now
		} else {
			b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		}
	}

	remaining := b.tokens - tokens
	if remaining >= 0 {
		b.tokens = remaining
	}
	b.expiresAt = now.Add(cfg.ttl())

	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

// sweep drops expired buckets at most once per ttl.
func (ms *MemoryStore) sweep(now time.Time, every time.Duration) {
	if now.Sub(ms.lastSweep) < every {
		return
	}
	ms.lastSweep = now
	for key, b := range ms.buckets {
		if now.After(b.expiresAt) {
			delete(ms.buckets, key)
		}
	}
}
