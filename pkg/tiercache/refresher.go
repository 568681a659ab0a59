package tiercache

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

// DefaultSettleDelay is how long Refresh waits after reconciling before re-reading.
const DefaultSettleDelay = 500 * time.Millisecond

// Server is the subset of *Client the Refresher uses.
type Server interface {
	Check(ctx context.Context) (Snapshot, error)
	Reconcile(ctx context.Context) (subscription.ReconcileResult, error)
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithSettleDelay overrides DefaultSettleDelay. Zero skips the wait.
func WithSettleDelay(d time.Duration) RefresherOption {
	return func(r *Refresher) { r.settle = d }
}

// WithOnInvalidate sets the hook fired after the snapshot changed,
// typically a full reload of the interactive context.
func WithOnInvalidate(fn func(old, current Snapshot)) RefresherOption {
	return func(r *Refresher) { r.onInvalidate = fn }
}

// WithRefresherLogger sets the logger.
func WithRefresherLogger(log *slog.Logger) RefresherOption {
	return func(r *Refresher) { r.log = log }
}

// Refresher runs the refresh protocol against a Server.
type Refresher struct {
	server       Server
	cache        *Cache
	settle       time.Duration
	onInvalidate func(old, current Snapshot)
	log          *slog.Logger
}

// NewRefresher creates a Refresher.
func NewRefresher(server Server, cache *Cache, opts ...RefresherOption) *Refresher {
	if server == nil || cache == nil {
		panic("tiercache: server and cache are required")
	}
	r := &Refresher{
		server: server,
		cache:  cache,
		settle: DefaultSettleDelay,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh forces a reconciliation, waits once for in-flight webhooks, then
// re-reads the tier. It reports whether the cached snapshot changed.
// A failed reconciliation is logged and the re-read still happens.
func (r *Refresher) Refresh(ctx context.Context) (bool, error) {
	if _, err := r.server.Reconcile(ctx); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		r.log.WarnContext(ctx, "forced reconciliation failed", logger.Error(err))
	}

	if r.settle > 0 {
		t := time.NewTimer(r.settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		case <-t.C:
		}
	}

	fresh, err := r.server.Check(ctx)
	if err != nil {
		return false, err
	}

	old := r.cache.Load()
	if sameEntitlements(old, fresh) {
		return false, nil
	}

	r.cache.Store(fresh)
	r.log.InfoContext(ctx, "tier snapshot invalidated",
		slog.String("previous", old.Tier.String()),
		slog.String("current", fresh.Tier.String()),
	)
	if r.onInvalidate != nil {
		r.onInvalidate(old, fresh)
	}
	return true, nil
}

// Attempt checks allowed against the cached snapshot. On refusal it refreshes
// exactly once and checks again, so a user who just paid does not see a false
// upgrade prompt. Still refused returns subscription.ErrEntitlementDenied.
func (r *Refresher) Attempt(ctx context.Context, allowed func(Snapshot) bool) error {
	if allowed(r.cache.Load()) {
		return nil
	}
	if _, err := r.Refresh(ctx); err != nil {
		return err
	}
	if allowed(r.cache.Load()) {
		return nil
	}
	return subscription.ErrEntitlementDenied
}

func sameEntitlements(a, b Snapshot) bool {
	return a.Tier == b.Tier &&
		a.CanUseAI == b.CanUseAI &&
		a.CanUseCustomizations == b.CanUseCustomizations &&
		a.ResumeLimit == b.ResumeLimit
}
