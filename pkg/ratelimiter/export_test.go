package ratelimiter

import "time"

func (ms *MemoryStore) SetClock(now func() time.Time) { ms.now = now }

func (s *RedisStore) SetClock(now func() time.Time) { s.now = now }
