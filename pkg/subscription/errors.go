package subscription

import "errors"

var (
	ErrUnauthenticated       = errors.New("no verified identity")
	ErrSignatureVerification = errors.New("webhook signature verification failed")
	ErrInvalidSubscription   = errors.New("invalid subscription")
	ErrEntitlementDenied     = errors.New("entitlement denied: upgrade required")
	ErrProviderUnavailable   = errors.New("billing provider unavailable")

	ErrRecordNotFound      = errors.New("subscription record not found")
	ErrMissingUserID       = errors.New("user ID is required")
	ErrMissingCustomerID   = errors.New("customer ID is required")
	ErrMissingSignature    = errors.New("webhook signature header is missing")
	ErrCustomerNotLinked   = errors.New("no billing customer linked to user")
	ErrUnknownPrice        = errors.New("price is not a recognized paid plan")
	ErrNoSubscriptionItems = errors.New("subscription has no items")
	ErrAlreadySubscribed   = errors.New("user already has an active subscription")
	ErrMalformedEvent      = errors.New("malformed webhook event")
	ErrNoCheckoutURL       = errors.New("no checkout URL returned from provider")

	ErrMissingSecretKey     = errors.New("billing provider secret key is required")
	ErrMissingWebhookSecret = errors.New("billing provider webhook secret is required")
	ErrMissingPrices        = errors.New("at least one paid price ID is required")
)

// IsUpgradeRequired reports whether err means the user should be offered an upgrade
// rather than a generic retry-later message.
func IsUpgradeRequired(err error) bool {
	return errors.Is(err, ErrEntitlementDenied)
}
