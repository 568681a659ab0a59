package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	stripelib "github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	stripesub "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig configures the Stripe billing provider.
type StripeConfig struct {
	SecretKey     string        `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET,required"`
	Timeout       time.Duration `env:"STRIPE_TIMEOUT" envDefault:"10s"`
	// APIURL overrides the API endpoint, e.g. for stripe-mock.
	APIURL string `env:"STRIPE_API_URL"`
}

// Stripe event names consumed by the reconciler.
const (
	stripeCheckoutSessionCompleted = "checkout.session.completed"
	stripeSubscriptionCreated      = "customer.subscription.created"
	stripeSubscriptionUpdated      = "customer.subscription.updated"
	stripeSubscriptionDeleted      = "customer.subscription.deleted"
)

// StripeProvider implements BillingProvider on top of the Stripe API.
type StripeProvider struct {
	webhookSecret string
	subscriptions *stripesub.Client
	sessions      *checkoutsession.Client
}

// NewStripeProvider creates a Stripe backed BillingProvider.
// The backend never retries on its own: failed calls surface to the caller so
// that Stripe's webhook redelivery drives the retry.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProviderTimeout
	}

	backendCfg := &stripelib.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripelib.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripelib.String(cfg.APIURL)
	}
	backend := stripelib.GetBackendWithConfig(stripelib.APIBackend, backendCfg)

	return &StripeProvider{
		webhookSecret: cfg.WebhookSecret,
		subscriptions: &stripesub.Client{B: backend, Key: cfg.SecretKey},
		sessions:      &checkoutsession.Client{B: backend, Key: cfg.SecretKey},
	}, nil
}

// stripeCheckoutSession is the part of checkout.session we read.
type stripeCheckoutSession struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// stripeSubscriptionRef is the part of a subscription event we read.
// The rest is fetched from the API.
type stripeSubscriptionRef struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
}

// ParseWebhook verifies the Stripe-Signature header and normalizes the event.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if signature == "" {
		return nil, errors.Join(ErrSignatureVerification, ErrMissingSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrSignatureVerification, err)
	}

	out := &WebhookEvent{
		ID:            event.ID,
		Type:          EventIgnored,
		ProviderEvent: string(event.Type),
	}

	if event.Data == nil {
		return out, nil
	}

	switch string(event.Type) {
	case stripeCheckoutSessionCompleted:
		var sess stripeCheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: decode checkout session: %w", ErrMalformedEvent, err)
		}
		out.Type = EventCheckoutCompleted
		out.UserID = sess.Metadata[MetadataUserID]
		if out.UserID == "" {
			out.UserID = sess.ClientReferenceID
		}
		out.CustomerID = sess.Customer
		out.SubscriptionID = sess.Subscription

	case stripeSubscriptionCreated, stripeSubscriptionUpdated, stripeSubscriptionDeleted:
		var ref stripeSubscriptionRef
		if err := json.Unmarshal(event.Data.Raw, &ref); err != nil {
			return nil, fmt.Errorf("%w: decode subscription: %w", ErrMalformedEvent, err)
		}
		out.Type = EventSubscriptionCreatedOrUpdated
		if string(event.Type) == stripeSubscriptionDeleted {
			out.Type = EventSubscriptionDeleted
		}
		out.CustomerID = ref.Customer
		out.SubscriptionID = ref.ID
	}

	return out, nil
}

// GetSubscription fetches the current state of a subscription.
func (p *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	params := &stripelib.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get subscription: %w", err)
	}
	return toProviderSubscription(sub)
}

// ListActiveSubscriptions returns up to limit active subscriptions of a customer.
func (p *StripeProvider) ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]ProviderSubscription, error) {
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}
	if limit <= 0 {
		limit = 1
	}

	params := &stripelib.SubscriptionListParams{
		Customer: stripelib.String(customerID),
		Status:   stripelib.String(string(stripelib.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripelib.Int64(int64(limit))

	out := make([]ProviderSubscription, 0, limit)
	it := p.subscriptions.List(params)
	for len(out) < limit && it.Next() {
		sub, err := toProviderSubscription(it.Subscription())
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list subscriptions: %w", err)
	}
	return out, nil
}

// CreateCheckoutLink starts a hosted subscription checkout.
func (p *StripeProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	meta := map[string]string{MetadataUserID: req.UserID}

	params := &stripelib.CheckoutSessionParams{
		Mode: stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				Price:    stripelib.String(req.PriceID),
				Quantity: stripelib.Int64(1),
			},
		},
		ClientReferenceID: stripelib.String(req.UserID),
		SubscriptionData: &stripelib.CheckoutSessionSubscriptionDataParams{
			Metadata: meta,
		},
		AllowPromotionCodes: stripelib.Bool(true),
		SuccessURL:          stripelib.String(req.SuccessURL),
		CancelURL:           stripelib.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, req.UserID)

	switch {
	case req.CustomerID != "":
		params.Customer = stripelib.String(req.CustomerID)
	case req.Email != "":
		params.CustomerEmail = stripelib.String(req.Email)
	}

	sess, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	return &CheckoutLink{
		URL:       sess.URL,
		SessionID: sess.ID,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0).UTC(),
	}, nil
}

func toProviderSubscription(sub *stripelib.Subscription) (*ProviderSubscription, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: empty subscription", ErrMalformedEvent)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0] == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSubscriptionItems, sub.ID)
	}

	item := sub.Items.Data[0]
	out := &ProviderSubscription{
		ID:                sub.ID,
		Status:            Status(sub.Status),
		CurrentPeriodEnd:  time.Unix(item.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Metadata:          sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if item.Price != nil {
		out.PriceID = item.Price.ID
	}
	return out, nil
}
