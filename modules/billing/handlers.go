package billing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/resumekit/handler"
	"github.com/dmitrymomot/resumekit/pkg/jwt"
	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

type handlers struct {
	reconciler Reconciler
	gate       EntitlementReader
	checkout   CheckoutStarter
	metrics    *Metrics
	log        *slog.Logger
	maxBytes   int64
}

type webhookResponse struct {
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
}

// webhook verifies and applies a provider notification. Any non-2xx answer
// makes the provider redeliver later.
func (h *handlers) webhook(ctx handler.Context, _ struct{}) handler.Response {
	start := time.Now()
	r := ctx.Request()

	payload, err := io.ReadAll(http.MaxBytesReader(ctx.ResponseWriter(), r.Body, h.maxBytes))
	if err != nil {
		h.metrics.observe("", OutcomeRejected, time.Since(start))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return handler.JSONError(http.StatusRequestEntityTooLarge, handler.ErrorDetail{Code: "payload_too_large"})
		}
		return handler.Fail(errors.Join(handler.ErrBadRequest, err))
	}

	event, err := h.reconciler.HandleWebhook(ctx, payload, r.Header.Get(SignatureHeader))
	eventType := ""
	if event != nil {
		eventType = string(event.Type)
	}

	switch {
	case errors.Is(err, subscription.ErrSignatureVerification), errors.Is(err, subscription.ErrMalformedEvent):
		h.metrics.observe(eventType, OutcomeRejected, time.Since(start))
		return handler.Fail(err)
	case err != nil:
		h.metrics.observe(eventType, OutcomeFailed, time.Since(start))
		return handler.Fail(err)
	}

	outcome := OutcomeProcessed
	if event.Type == subscription.EventIgnored {
		outcome = OutcomeIgnored
	}
	h.metrics.observe(eventType, outcome, time.Since(start))

	return handler.JSON(webhookResponse{Received: true, Event: event.ProviderEvent})
}

// subscription returns the caller's entitlements. Anonymous callers get the
// free snapshot rather than an error.
func (h *handlers) subscription(ctx handler.Context, _ struct{}) handler.Response {
	userID, ok := jwt.UserID(ctx)
	if !ok {
		return handler.JSON(subscription.EntitlementsFor(subscription.TierFree))
	}

	e, err := h.gate.Entitlements(ctx, userID)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(e)
}

// reconcile re-derives the caller's record from the provider without waiting
// for a webhook and returns the freshly resolved tier.
func (h *handlers) reconcile(ctx handler.Context, _ struct{}) handler.Response {
	userID, ok := jwt.UserID(ctx)
	if !ok {
		return handler.Fail(subscription.ErrUnauthenticated)
	}

	res, err := h.reconciler.ReconcileUser(ctx, userID)
	if err != nil {
		return handler.Fail(err)
	}

	if res.Changed {
		h.log.InfoContext(ctx, "tier changed by forced reconciliation",
			logger.UserID(userID),
			slog.String("previous", res.Previous.String()),
			logger.Tier(res.Current.String()),
		)
	}
	return handler.JSON(res)
}

type checkoutRequest struct {
	PriceID string `json:"priceId"`
}

type checkoutResponse struct {
	URL       string    `json:"url"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// startCheckout opens a hosted checkout session for a recognized paid price.
func (h *handlers) startCheckout(ctx handler.Context, req checkoutRequest) handler.Response {
	claims, ok := jwt.ClaimsFromContext(ctx)
	if !ok {
		return handler.Fail(subscription.ErrUnauthenticated)
	}

	link, err := h.checkout.Start(ctx, claims.Subject, req.PriceID, claims.Email)
	if err != nil {
		return handler.Fail(err)
	}

	return handler.JSON(checkoutResponse{
		URL:       link.URL,
		SessionID: link.SessionID,
		ExpiresAt: link.ExpiresAt,
	}, handler.WithJSONStatus(http.StatusCreated))
}
