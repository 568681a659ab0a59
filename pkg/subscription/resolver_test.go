package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

func TestResolver_ResolveAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  *subscription.Record
		want    subscription.Tier
		wantErr error
	}{
		{
			name: "no record is free",
			want: subscription.TierFree,
		},
		{
			name: "pro price in period",
			record: &subscription.Record{
				UserID: "user_1", CustomerID: "cus_1", SubscriptionID: "sub_1",
				PriceID: priceProMonthly, CurrentPeriodEnd: now.Add(30 * 24 * time.Hour),
			},
			want: subscription.TierPro,
		},
		{
			name: "pro plus price in period",
			record: &subscription.Record{
				UserID: "user_1", CustomerID: "cus_1", SubscriptionID: "sub_1",
				PriceID: priceProPlusMonthly, CurrentPeriodEnd: now.Add(time.Hour),
			},
			want: subscription.TierPro,
		},
		{
			name: "expired pro is free",
			record: &subscription.Record{
				UserID: "user_1", CustomerID: "cus_1", SubscriptionID: "sub_1",
				PriceID: priceProMonthly, CurrentPeriodEnd: now.Add(-time.Second),
			},
			want: subscription.TierFree,
		},
		{
			name: "expired unknown price is free",
			record: &subscription.Record{
				UserID: "user_1", CustomerID: "cus_1", SubscriptionID: "sub_1",
				PriceID: "price_legacy", CurrentPeriodEnd: now.Add(-time.Hour),
			},
			want: subscription.TierFree,
		},
		{
			name: "unknown price in period is invalid",
			record: &subscription.Record{
				UserID: "user_1", CustomerID: "cus_1", SubscriptionID: "sub_1",
				PriceID: "price_legacy", CurrentPeriodEnd: now.Add(time.Hour),
			},
			wantErr: subscription.ErrInvalidSubscription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := subscription.NewMemoryStore()
			if tt.record != nil {
				_, err := store.Upsert(ctx, *tt.record)
				require.NoError(t, err)
			}

			resolver := subscription.NewResolver(store, testPrices())
			tier, err := resolver.ResolveAt(ctx, "user_1", now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, tier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tier)
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty user", func(t *testing.T) {
		t.Parallel()
		resolver := subscription.NewResolver(subscription.NewMemoryStore(), testPrices())
		_, err := resolver.Resolve(context.Background(), "")
		assert.ErrorIs(t, err, subscription.ErrMissingUserID)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		resolver := subscription.NewResolver(failingStore{err: boom}, testPrices())
		_, err := resolver.Resolve(context.Background(), "user_1")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil store panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { subscription.NewResolver(nil, testPrices()) })
	})
}

// Scenario C: expiry is a read-time decision; nothing is written.
func TestResolver_ExpiryWithoutWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()
	clock := now
	store := subscription.NewMemoryStore()
	_, err := store.Upsert(ctx, subscription.Record{
		UserID: "user_1", CustomerID: "cus_1", SubscriptionID: "sub_1",
		PriceID: priceProMonthly, CurrentPeriodEnd: now.Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)

	before, err := store.Get(ctx, "user_1")
	require.NoError(t, err)

	resolver := subscription.NewResolver(store, testPrices(), subscription.WithClock(func() time.Time { return clock }))

	tier, err := resolver.Resolve(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, subscription.TierPro, tier)
	assert.True(t, subscription.CanUseAITools(tier))

	clock = now.Add(31 * 24 * time.Hour)
	tier, err = resolver.Resolve(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, subscription.TierFree, tier)

	after, err := store.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

type failingStore struct {
	err error
}

func (s failingStore) Get(context.Context, string) (*subscription.Record, error) {
	return nil, s.err
}

func (s failingStore) Upsert(context.Context, subscription.Record) (*subscription.Record, error) {
	return nil, s.err
}

func (s failingStore) DeleteByCustomerID(context.Context, string) (int64, error) {
	return 0, s.err
}
