package billing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/resumekit/binder"
	"github.com/dmitrymomot/resumekit/handler"
	"github.com/dmitrymomot/resumekit/modules/apierr"
	"github.com/dmitrymomot/resumekit/pkg/jwt"
	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

// SignatureHeader carries the provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

// DefaultMaxWebhookBytes caps the webhook body.
const DefaultMaxWebhookBytes int64 = 1 << 20

// Reconciler is the subset of *subscription.Reconciler used by the routes.
type Reconciler interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*subscription.WebhookEvent, error)
	ReconcileUser(ctx context.Context, userID string) (*subscription.ReconcileResult, error)
}

// CheckoutStarter is the subset of *subscription.Checkout used by the routes.
type CheckoutStarter interface {
	Start(ctx context.Context, userID, priceID, email string) (*subscription.CheckoutLink, error)
}

// EntitlementReader is the subset of *subscription.Gate used by the routes.
type EntitlementReader interface {
	Entitlements(ctx context.Context, userID string) (subscription.Entitlements, error)
}

// RouterOptions configures the billing module. Checkout, Metrics and
// ReconcileLimiter are optional.
type RouterOptions struct {
	Reconciler      Reconciler
	Gate            EntitlementReader
	Checkout        CheckoutStarter
	Metrics         *Metrics
	Logger          *slog.Logger
	MaxWebhookBytes int64

	// ReconcileLimiter wraps the forced reconcile route, which calls the
	// provider on every request.
	ReconcileLimiter func(http.Handler) http.Handler
}

// Router mounts the billing endpoints. It expects jwt.Middleware upstream.
//
//	r.Mount("/billing", billing.Router(billing.RouterOptions{
//	    Reconciler: reconciler,
//	    Gate:       gate,
//	    Checkout:   checkout,
//	}))
func Router(opts RouterOptions) chi.Router {
	if opts.Reconciler == nil || opts.Gate == nil {
		panic("billing: Reconciler and Gate are required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.MaxWebhookBytes <= 0 {
		opts.MaxWebhookBytes = DefaultMaxWebhookBytes
	}

	h := &handlers{
		reconciler: opts.Reconciler,
		gate:       opts.Gate,
		checkout:   opts.Checkout,
		metrics:    opts.Metrics,
		log:        opts.Logger.With(logger.Component("billing")),
		maxBytes:   opts.MaxWebhookBytes,
	}
	onError := apierr.ErrorHandler(h.log)

	r := chi.NewRouter()
	r.Post("/webhook", handler.Wrap(h.webhook,
		handler.WithErrorHandler[handler.Context, struct{}](onError)))
	r.Get("/subscription", handler.Wrap(h.subscription,
		handler.WithErrorHandler[handler.Context, struct{}](onError)))

	r.Group(func(r chi.Router) {
		r.Use(jwt.RequireAuth(jwt.WithErrorHandler(apierr.Unauthorized)))

		reconcile := handler.Wrap(h.reconcile,
			handler.WithErrorHandler[handler.Context, struct{}](onError))
		limited := r
		if opts.ReconcileLimiter != nil {
			limited = r.With(opts.ReconcileLimiter)
		}
		limited.Post("/reconcile", reconcile)
		limited.Get("/reconcile", reconcile)

		if h.checkout != nil {
			r.Post("/checkout", handler.Wrap(h.startCheckout,
				handler.WithBinders[handler.Context, checkoutRequest](binder.BindJSON()),
				handler.WithErrorHandler[handler.Context, checkoutRequest](onError)))
		}
	})

	return r
}
