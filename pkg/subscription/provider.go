package subscription

import (
	"context"
	"time"
)

// MetadataUserID is the metadata key carrying our user ID on provider objects.
const MetadataUserID = "userId"

// BillingProvider is the outbound surface of the billing provider used by this package.
// Implementations must verify webhook authenticity before returning an event.
type BillingProvider interface {
	// ParseWebhook verifies the signature and normalizes the event.
	// Fails with ErrSignatureVerification when the payload is not authentic.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// GetSubscription fetches the provider's current state of a subscription.
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)

	// ListActiveSubscriptions returns up to limit active subscriptions of a customer.
	ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]ProviderSubscription, error)

	// CreateCheckoutLink starts a hosted checkout session.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)
}

// ProviderSubscription is a full snapshot of a provider subscription.
type ProviderSubscription struct {
	ID                string
	CustomerID        string
	PriceID           string
	Status            Status
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
	Metadata          map[string]string
}

// UserID returns the user ID stamped into the subscription's metadata at checkout.
func (s ProviderSubscription) UserID() string {
	return s.Metadata[MetadataUserID]
}

// EventType is a normalized billing lifecycle event kind.
type EventType string

const (
	EventCheckoutCompleted            EventType = "checkout_completed"
	EventSubscriptionCreatedOrUpdated EventType = "subscription_created_or_updated"
	EventSubscriptionDeleted          EventType = "subscription_deleted"
	EventIgnored                      EventType = "ignored"
)

// WebhookEvent is a verified, normalized provider notification.
// Only identifiers are kept: subscription state is always re-fetched.
type WebhookEvent struct {
	ID             string
	Type           EventType
	ProviderEvent  string
	UserID         string
	CustomerID     string
	SubscriptionID string
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string
	UserID     string
	CustomerID string // reuse an already linked customer when known
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}
