package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/resumekit/pkg/logger"
)

// CheckoutConfig holds the redirect targets of the hosted checkout page.
// Unset URLs are derived from the public base URL, see WithBaseURL.
type CheckoutConfig struct {
	SuccessURL string `env:"STRIPE_SUCCESS_URL"`
	CancelURL  string `env:"STRIPE_CANCEL_URL"`
}

// WithBaseURL fills the unset redirect targets from baseURL. The success URL
// carries the provider's session id placeholder.
func (c CheckoutConfig) WithBaseURL(baseURL string) CheckoutConfig {
	baseURL = strings.TrimRight(baseURL, "/")
	if c.SuccessURL == "" {
		c.SuccessURL = baseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if c.CancelURL == "" {
		c.CancelURL = baseURL + "/billing"
	}
	return c
}

// Checkout starts hosted checkout sessions for recognized paid prices.
type Checkout struct {
	provider BillingProvider
	linker   CustomerLinker
	resolver TierResolver
	prices   PriceSet
	cfg      CheckoutConfig
	log      *slog.Logger
	timeout  time.Duration
}

// NewCheckout wires a Checkout. Panics on nil dependencies.
func NewCheckout(provider BillingProvider, linker CustomerLinker, resolver TierResolver, prices PriceSet, cfg CheckoutConfig, log *slog.Logger) *Checkout {
	if provider == nil {
		panic("subscription: BillingProvider is required")
	}
	if linker == nil {
		panic("subscription: CustomerLinker is required")
	}
	if resolver == nil {
		panic("subscription: TierResolver is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Checkout{
		provider: provider,
		linker:   linker,
		resolver: resolver,
		prices:   prices,
		cfg:      cfg,
		log:      log,
		timeout:  DefaultProviderTimeout,
	}
}

// Start creates a checkout link for the user.
// The user ID is stamped into the session and the subscription metadata so that
// both the checkout and the subscription events can be keyed back to the user.
func (c *Checkout) Start(ctx context.Context, userID, priceID, email string) (*CheckoutLink, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !c.prices.Recognizes(priceID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrice, priceID)
	}

	tier, err := c.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tier == TierPro {
		return nil, ErrAlreadySubscribed
	}

	customerID, err := c.linker.CustomerID(ctx, userID)
	if err != nil && !errors.Is(err, ErrCustomerNotLinked) {
		return nil, fmt.Errorf("lookup linked customer: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	link, err := c.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		PriceID:    priceID,
		UserID:     userID,
		CustomerID: customerID,
		Email:      email,
		SuccessURL: c.cfg.SuccessURL,
		CancelURL:  c.cfg.CancelURL,
	})
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, fmt.Errorf("create checkout session: %w", err))
	}
	if link.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	c.log.InfoContext(ctx, "checkout session created",
		logger.UserID(userID),
		logger.PriceID(priceID),
		slog.String("session_id", link.SessionID),
	)
	return link, nil
}
