package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumekit/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var cfg = ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}

func newMemoryBucket(t *testing.T) (*ratelimiter.Bucket, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore()
	store.SetClock(c.Now)
	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b, c
}

func TestNewBucket(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.NewBucket(nil, cfg)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	for _, bad := range []ratelimiter.Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 1},
	} {
		_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), bad)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	}
}

func TestBucket_Memory(t *testing.T) {
	t.Parallel()

	t.Run("burst then deny", func(t *testing.T) {
		t.Parallel()
		b, _ := newMemoryBucket(t)
		ctx := context.Background()

		for want := 2; want >= 0; want-- {
			res, err := b.Allow(ctx, "k")
			require.NoError(t, err)
			assert.True(t, res.Allowed())
			assert.Equal(t, want, res.Remaining)
			assert.Equal(t, 3, res.Limit)
		}

		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed())
		assert.Equal(t, -1, res.Remaining)
	})

	t.Run("denied request does not drain the bucket", func(t *testing.T) {
		t.Parallel()
		b, c := newMemoryBucket(t)
		ctx := context.Background()

		for range 3 {
			_, err := b.Allow(ctx, "k")
			require.NoError(t, err)
		}
		for range 5 {
			res, err := b.Allow(ctx, "k")
			require.NoError(t, err)
			assert.False(t, res.Allowed())
		}

		c.Advance(time.Minute)
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("partial interval carries over to the next refill", func(t *testing.T) {
		t.Parallel()
		b, c := newMemoryBucket(t)
		ctx := context.Background()
		start := c.Now()

		_, err := b.AllowN(ctx, "k", 3)
		require.NoError(t, err)

		c.Advance(114 * time.Second)
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, res.Allowed())
		assert.Equal(t, start.Add(2*time.Minute), res.ResetAt)

		c.Advance(6 * time.Second)
		res, err = b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "0.9 of an interval elapsed before the first refill must count")
	})

	t.Run("drained after a long idle period", func(t *testing.T) {
		t.Parallel()
		b, c := newMemoryBucket(t)
		ctx := context.Background()

		_, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		c.Advance(24 * time.Hour)

		res, err := b.AllowN(ctx, "k", 3)
		require.NoError(t, err)
		require.True(t, res.Allowed())

		res, err = b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed())
	})

	t.Run("refill is capped at capacity", func(t *testing.T) {
		t.Parallel()
		b, c := newMemoryBucket(t)
		ctx := context.Background()

		_, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		c.Advance(24 * time.Hour)

		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		b, _ := newMemoryBucket(t)
		ctx := context.Background()

		res, err := b.AllowN(ctx, "a", 3)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Remaining)

		res, err = b.Allow(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})

	t.Run("reset restores capacity", func(t *testing.T) {
		t.Parallel()
		b, _ := newMemoryBucket(t)
		ctx := context.Background()

		_, err := b.AllowN(ctx, "k", 3)
		require.NoError(t, err)
		require.NoError(t, b.Reset(ctx, "k"))

		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})

	t.Run("invalid token count", func(t *testing.T) {
		t.Parallel()
		b, _ := newMemoryBucket(t)
		_, err := b.AllowN(context.Background(), "k", 0)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	})
}

func TestComposite(t *testing.T) {
	t.Parallel()

	fixed := func(s string) ratelimiter.KeyFunc { return func(*http.Request) string { return s } }
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, "", ratelimiter.Composite(fixed(""), fixed(""))(r))
	assert.Equal(t, "a:b", ratelimiter.Composite(fixed("a"), fixed(""), fixed("b"))(r))

	long := ratelimiter.Composite(fixed(strings.Repeat("x", 60)), fixed(strings.Repeat("y", 60)))(r)
	assert.LessOrEqual(t, len(long), 64)
	assert.NotEmpty(t, long)
}

type userKey struct{}

func userFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("limits per user", func(t *testing.T) {
		t.Parallel()
		b, _ := newMemoryBucket(t)
		var denied error
		h := ratelimiter.Middleware(b, ratelimiter.ByUser(userFromCtx),
			ratelimiter.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
				denied = err
				w.WriteHeader(http.StatusTooManyRequests)
			}),
		)(ok)

		call := func(user string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), userKey{}, user))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		for range 3 {
			assert.Equal(t, http.StatusNoContent, call("u1").Code)
		}
		rec := call("u1")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.ErrorIs(t, denied, ratelimiter.ErrLimitExceeded)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))

		assert.Equal(t, http.StatusNoContent, call("u2").Code)
	})

	t.Run("anonymous requests pass", func(t *testing.T) {
		t.Parallel()
		b, _ := newMemoryBucket(t)
		h := ratelimiter.Middleware(b, ratelimiter.ByUser(userFromCtx))(ok)

		for range 10 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		b, err := ratelimiter.NewBucket(failingStore{}, cfg)
		require.NoError(t, err)
		h := ratelimiter.Middleware(b, func(*http.Request) string { return "k" })(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

type failingStore struct{}

func (failingStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, errors.Join(ratelimiter.ErrStoreUnavailable, errors.New("down"))
}

func (failingStore) Reset(context.Context, string) error { return nil }

func TestRedisStore(t *testing.T) {
	t.Parallel()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	c := &clock{now: time.Now()}
	store := ratelimiter.NewRedisStore(rdb, "test-"+uuid.NewString())
	store.SetClock(c.Now)
	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	key := "user:" + uuid.NewString()
	t.Cleanup(func() { _ = b.Reset(context.Background(), key) })

	for want := 2; want >= 0; want-- {
		res, err := b.Allow(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, res.Remaining)
	}
	res, err := b.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	c.Advance(time.Minute)
	res, err = b.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}
