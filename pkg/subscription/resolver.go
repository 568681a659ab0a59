package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TierResolver answers which tier a user is on right now.
type TierResolver interface {
	Resolve(ctx context.Context, userID string) (Tier, error)
}

// Clock returns the current time. Swappable in tests to simulate expiry.
type Clock func() time.Time

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the wall clock used by Resolve.
func WithClock(clock Clock) ResolverOption {
	return func(r *Resolver) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// Resolver maps a stored record (or its absence) to a Tier.
// It never writes to the store.
type Resolver struct {
	store  RecordStore
	prices PriceSet
	clock  Clock
}

// NewResolver creates a Resolver backed by store.
// Panics if store is nil to fail fast during wiring.
func NewResolver(store RecordStore, prices PriceSet, opts ...ResolverOption) *Resolver {
	if store == nil {
		panic("subscription: RecordStore is required")
	}

	r := &Resolver{
		store:  store,
		prices: prices,
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the user's tier at the current time.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Tier, error) {
	return r.ResolveAt(ctx, userID, r.clock())
}

// ResolveAt returns the user's tier at the given moment.
// An expired record resolves to free without being deleted. A live record whose
// price is not recognized fails with ErrInvalidSubscription instead of downgrading.
func (r *Resolver) ResolveAt(ctx context.Context, userID string, now time.Time) (Tier, error) {
	if userID == "" {
		return "", ErrMissingUserID
	}

	rec, err := r.store.Get(ctx, userID)
	if errors.Is(err, ErrRecordNotFound) {
		return TierFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("load subscription record: %w", err)
	}

	if rec.ExpiredAt(now) {
		return TierFree, nil
	}

	if r.prices.Recognizes(rec.PriceID) {
		return TierPro, nil
	}

	return "", fmt.Errorf("%w: unrecognized price %q for user %s", ErrInvalidSubscription, rec.PriceID, userID)
}
