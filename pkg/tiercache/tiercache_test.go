package tiercache_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumekit/pkg/subscription"
	"github.com/dmitrymomot/resumekit/pkg/tiercache"
)

// fakeServer mimics the billing routes. Reconcile flips the tier to pro when
// upgradeOnReconcile is set.
type fakeServer struct {
	mu                 sync.Mutex
	tier               subscription.Tier
	upgradeOnReconcile bool
	reconcileStatus    int
	reconciles         atomic.Int32
	checks             atomic.Int32
	authHeader         atomic.Value
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /billing/subscription", func(w http.ResponseWriter, r *http.Request) {
		f.checks.Add(1)
		f.authHeader.Store(r.Header.Get("Authorization"))
		f.mu.Lock()
		tier := f.tier
		f.mu.Unlock()
		writeData(w, http.StatusOK, subscription.EntitlementsFor(tier))
	})
	mux.HandleFunc("POST /billing/reconcile", func(w http.ResponseWriter, r *http.Request) {
		f.reconciles.Add(1)
		if f.reconcileStatus != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.reconcileStatus)
			_, _ = w.Write([]byte(`{"error":{"code":"service_unavailable"}}`))
			return
		}
		f.mu.Lock()
		prev := f.tier
		if f.upgradeOnReconcile {
			f.tier = subscription.TierPro
		}
		cur := f.tier
		f.mu.Unlock()
		writeData(w, http.StatusOK, subscription.ReconcileResult{
			Tier:     cur,
			Previous: prev,
			Current:  cur,
			Changed:  prev != cur,
			CanUseAI: subscription.CanUseAITools(cur),
		})
	})
	return mux
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func setup(t *testing.T, f *fakeServer, opts ...tiercache.RefresherOption) (*tiercache.Client, *tiercache.Cache, *tiercache.Refresher) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	client := tiercache.NewClient(srv.URL+"/", tiercache.WithBearerToken("tok"))
	cache := tiercache.NewCache()
	opts = append([]tiercache.RefresherOption{tiercache.WithSettleDelay(time.Millisecond)}, opts...)
	return client, cache, tiercache.NewRefresher(client, cache, opts...)
}

func TestClient(t *testing.T) {
	t.Parallel()

	f := &fakeServer{tier: subscription.TierPro}
	client, _, _ := setup(t, f)

	snap, err := client.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, subscription.TierPro, snap.Tier)
	assert.True(t, snap.CanUseAI)
	assert.Equal(t, subscription.Unlimited, snap.ResumeLimit)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.Equal(t, "Bearer tok", f.authHeader.Load())

	res, err := client.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, subscription.TierPro, res.Current)
	assert.False(t, res.Changed)
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/billing/reconcile" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal_error"}}`))
	}))
	t.Cleanup(srv.Close)

	client := tiercache.NewClient(srv.URL)

	_, err := client.Reconcile(context.Background())
	assert.ErrorIs(t, err, subscription.ErrUnauthenticated)

	_, err = client.Check(context.Background())
	require.ErrorIs(t, err, tiercache.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "internal_error")
}

func TestRefresher_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("upgrade invalidates snapshot", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierFree, upgradeOnReconcile: true}

		var invalidated atomic.Int32
		_, cache, r := setup(t, f, tiercache.WithOnInvalidate(func(old, cur tiercache.Snapshot) {
			assert.Equal(t, subscription.TierFree, old.Tier)
			assert.Equal(t, subscription.TierPro, cur.Tier)
			invalidated.Add(1)
		}))

		changed, err := r.Refresh(context.Background())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, int32(1), invalidated.Load())
		assert.Equal(t, subscription.TierPro, cache.Load().Tier)
		assert.Equal(t, int32(1), f.reconciles.Load())
		assert.Equal(t, int32(1), f.checks.Load())
	})

	t.Run("unchanged tier keeps snapshot", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierFree}

		called := false
		_, _, r := setup(t, f, tiercache.WithOnInvalidate(func(_, _ tiercache.Snapshot) { called = true }))

		changed, err := r.Refresh(context.Background())
		require.NoError(t, err)
		assert.False(t, changed)
		assert.False(t, called)
	})

	t.Run("failed reconcile still re-reads", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierPro, reconcileStatus: http.StatusServiceUnavailable}
		_, cache, r := setup(t, f)

		changed, err := r.Refresh(context.Background())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, subscription.TierPro, cache.Load().Tier)
	})

	t.Run("settle wait honours cancellation", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierPro}
		_, _, r := setup(t, f, tiercache.WithSettleDelay(time.Hour))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := r.Refresh(ctx)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Less(t, time.Since(start), time.Second)
		assert.Zero(t, f.checks.Load())
	})
}

func TestRefresher_Attempt(t *testing.T) {
	t.Parallel()

	t.Run("cached permission skips the server", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierPro}
		_, cache, r := setup(t, f)
		cache.Store(tiercache.FromEntitlements(subscription.EntitlementsFor(subscription.TierPro), time.Now()))

		require.NoError(t, r.Attempt(context.Background(), tiercache.AllowsAI))
		assert.Zero(t, f.reconciles.Load())
	})

	t.Run("stale free snapshot refreshes once", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierFree, upgradeOnReconcile: true}
		_, _, r := setup(t, f)

		require.NoError(t, r.Attempt(context.Background(), tiercache.AllowsCustomizations))
		assert.Equal(t, int32(1), f.reconciles.Load())
	})

	t.Run("still refused after refresh", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierFree}
		_, _, r := setup(t, f)

		err := r.Attempt(context.Background(), tiercache.AllowsAI)
		assert.ErrorIs(t, err, subscription.ErrEntitlementDenied)
		assert.Equal(t, int32(1), f.reconciles.Load())
	})

	t.Run("resume quota", func(t *testing.T) {
		t.Parallel()
		f := &fakeServer{tier: subscription.TierFree}
		_, _, r := setup(t, f)

		assert.NoError(t, r.Attempt(context.Background(), tiercache.AllowsResume(0)))
		assert.ErrorIs(t, r.Attempt(context.Background(), tiercache.AllowsResume(1)), subscription.ErrEntitlementDenied)
	})
}

func TestCache(t *testing.T) {
	t.Parallel()

	c := tiercache.NewCache()
	assert.Equal(t, subscription.TierFree, c.Load().Tier)

	c.Store(tiercache.FromEntitlements(subscription.EntitlementsFor(subscription.TierPro), time.Now()))
	assert.True(t, c.Load().CanUseAI)

	c.Invalidate()
	assert.False(t, c.Load().CanUseAI)
}
