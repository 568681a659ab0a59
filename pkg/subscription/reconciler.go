package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/resumekit/pkg/logger"
)

// DefaultProviderTimeout bounds every outbound call to the billing provider.
const DefaultProviderTimeout = 10 * time.Second

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the logger used for operational visibility.
func WithLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

// WithProviderTimeout bounds each provider round trip.
func WithProviderTimeout(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Reconciler keeps the RecordStore in sync with the billing provider.
// It is the only writer of subscription records.
type Reconciler struct {
	provider BillingProvider
	store    RecordStore
	linker   CustomerLinker
	resolver TierResolver
	log      *slog.Logger
	timeout  time.Duration
}

// NewReconciler wires a Reconciler. Panics on nil dependencies.
func NewReconciler(provider BillingProvider, store RecordStore, linker CustomerLinker, resolver TierResolver, opts ...ReconcilerOption) *Reconciler {
	if provider == nil {
		panic("subscription: BillingProvider is required")
	}
	if store == nil {
		panic("subscription: RecordStore is required")
	}
	if linker == nil {
		panic("subscription: CustomerLinker is required")
	}
	if resolver == nil {
		panic("subscription: TierResolver is required")
	}

	r := &Reconciler{
		provider: provider,
		store:    store,
		linker:   linker,
		resolver: resolver,
		log:      logger.Discard(),
		timeout:  DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleWebhook verifies and applies one provider notification.
// Signature failures are returned before any side effect; every other failure
// is returned so the caller answers non-2xx and the provider redelivers.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	if signature == "" {
		return nil, errors.Join(ErrSignatureVerification, ErrMissingSignature)
	}

	event, err := r.provider.ParseWebhook(payload, signature)
	if err != nil {
		if !errors.Is(err, ErrSignatureVerification) {
			err = errors.Join(ErrMalformedEvent, err)
		}
		r.log.WarnContext(ctx, "webhook rejected", logger.Error(err))
		return nil, err
	}

	if err := r.HandleEvent(ctx, event); err != nil {
		r.log.ErrorContext(ctx, "webhook processing failed",
			logger.ProviderEvent(event.ProviderEvent, event.ID),
			logger.EventType(string(event.Type)),
			logger.Error(err),
		)
		return event, err
	}

	return event, nil
}

// HandleEvent applies an already verified event. Replaying an event leaves the
// store in the same end state.
func (r *Reconciler) HandleEvent(ctx context.Context, event *WebhookEvent) error {
	if event == nil {
		return ErrMalformedEvent
	}

	switch event.Type {
	case EventCheckoutCompleted:
		return r.linkCustomer(ctx, event)
	case EventSubscriptionCreatedOrUpdated:
		if event.SubscriptionID == "" {
			return fmt.Errorf("%w: subscription ID is missing", ErrMalformedEvent)
		}
		return r.syncSubscription(ctx, event.SubscriptionID)
	case EventSubscriptionDeleted:
		return r.deleteByCustomer(ctx, event.CustomerID, "subscription deleted")
	default:
		r.log.DebugContext(ctx, "webhook event ignored", logger.ProviderEvent(event.ProviderEvent, event.ID))
		return nil
	}
}

// linkCustomer fails loudly when the checkout carries no user: dropping it
// would orphan the user's entitlement for good.
func (r *Reconciler) linkCustomer(ctx context.Context, event *WebhookEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("%w: checkout session %s has no %s metadata", ErrMissingUserID, event.ID, MetadataUserID)
	}
	if event.CustomerID == "" {
		return fmt.Errorf("%w: checkout session %s has no customer", ErrMissingCustomerID, event.ID)
	}

	linked, err := r.linker.LinkCustomer(ctx, event.UserID, event.CustomerID)
	if err != nil {
		return fmt.Errorf("link customer: %w", err)
	}

	r.log.InfoContext(ctx, "checkout completed",
		logger.UserID(event.UserID),
		logger.CustomerID(event.CustomerID),
		slog.Bool("newly_linked", linked),
	)
	return nil
}

// syncSubscription re-fetches the subscription instead of trusting the event
// payload, so a late stale delivery converges to the provider's current truth.
func (r *Reconciler) syncSubscription(ctx context.Context, subscriptionID string) error {
	sub, err := r.fetchSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}

	if !sub.Status.Entitling() {
		return r.deleteByCustomer(ctx, sub.CustomerID, "subscription not entitling: "+string(sub.Status))
	}

	userID := sub.UserID()
	if userID == "" {
		// Fall back to the checkout linkage; if it has not landed yet the
		// provider will redeliver after it does.
		userID, err = r.linker.UserID(ctx, sub.CustomerID)
		if err != nil {
			return fmt.Errorf("%w: subscription %s carries no user and customer %s is not linked: %w",
				ErrMissingUserID, sub.ID, sub.CustomerID, err)
		}
	}

	rec, err := r.upsert(ctx, userID, sub)
	if err != nil {
		return err
	}

	r.log.InfoContext(ctx, "subscription upserted",
		logger.UserID(rec.UserID),
		logger.SubscriptionID(rec.SubscriptionID),
		logger.PriceID(rec.PriceID),
		slog.Time("current_period_end", rec.CurrentPeriodEnd),
		slog.Bool("cancel_at_period_end", rec.CancelAtPeriodEnd),
	)
	return nil
}

func (r *Reconciler) deleteByCustomer(ctx context.Context, customerID, reason string) error {
	if customerID == "" {
		return fmt.Errorf("%w: cannot delete records without a customer", ErrMissingCustomerID)
	}

	n, err := r.store.DeleteByCustomerID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("delete subscription records: %w", err)
	}

	r.log.InfoContext(ctx, "subscription records deleted",
		logger.CustomerID(customerID),
		slog.Int64("deleted", n),
		slog.String("reason", reason),
	)
	return nil
}

func (r *Reconciler) upsert(ctx context.Context, userID string, sub *ProviderSubscription) (*Record, error) {
	rec, err := r.store.Upsert(ctx, Record{
		UserID:            userID,
		SubscriptionID:    sub.ID,
		CustomerID:        sub.CustomerID,
		PriceID:           sub.PriceID,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd.UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert subscription record: %w", err)
	}
	return rec, nil
}

func (r *Reconciler) fetchSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sub, err := r.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, fmt.Errorf("get subscription %s: %w", subscriptionID, err))
	}
	return sub, nil
}

// ReconcileResult describes the outcome of a forced reconciliation.
type ReconcileResult struct {
	Tier           Tier   `json:"tier"`
	Previous       Tier   `json:"previous,omitempty"`
	Current        Tier   `json:"current"`
	Changed        bool   `json:"changed"`
	CanUseAI       bool   `json:"canUseAI"`
	SubscriptionID string `json:"providerSubscriptionId,omitempty"`
}

// ReconcileUser re-derives the user's record from the provider's current state
// without waiting for a webhook, then resolves the tier again. Users with no
// linked customer are resolved from the store as is.
func (r *Reconciler) ReconcileUser(ctx context.Context, userID string) (*ReconcileResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	result := &ReconcileResult{}

	// An invalid stored record must not block the repair it is asking for.
	if prev, err := r.resolver.Resolve(ctx, userID); err == nil {
		result.Previous = prev
	} else if !errors.Is(err, ErrInvalidSubscription) {
		return nil, err
	}

	customerID, err := r.linker.CustomerID(ctx, userID)
	switch {
	case errors.Is(err, ErrCustomerNotLinked):
		r.log.DebugContext(ctx, "reconcile skipped: no linked customer", logger.UserID(userID))
	case err != nil:
		return nil, fmt.Errorf("lookup linked customer: %w", err)
	default:
		sub, err := r.firstActiveSubscription(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if sub != nil && sub.UserID() != "" && sub.UserID() != userID {
			r.log.WarnContext(ctx, "reconcile skipped: subscription belongs to another user",
				logger.UserID(userID),
				logger.CustomerID(customerID),
				logger.SubscriptionID(sub.ID),
			)
			sub = nil
		}
		if sub != nil {
			if _, err := r.upsert(ctx, userID, sub); err != nil {
				return nil, err
			}
			result.SubscriptionID = sub.ID
			r.log.InfoContext(ctx, "subscription reconciled",
				logger.UserID(userID),
				logger.CustomerID(customerID),
				logger.SubscriptionID(sub.ID),
			)
		}
	}

	current, err := r.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	result.Tier = current
	result.Current = current
	result.CanUseAI = CanUseAITools(current)
	result.Changed = result.Previous != current
	return result, nil
}

func (r *Reconciler) firstActiveSubscription(ctx context.Context, customerID string) (*ProviderSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	subs, err := r.provider.ListActiveSubscriptions(ctx, customerID, 1)
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, fmt.Errorf("list subscriptions for %s: %w", customerID, err))
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return &subs[0], nil
}
