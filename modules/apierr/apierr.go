// Package apierr maps domain errors onto HTTP statuses for every route module.
package apierr

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/resumekit/handler"
	"github.com/dmitrymomot/resumekit/pkg/jwt"
	"github.com/dmitrymomot/resumekit/pkg/ratelimiter"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
	"github.com/dmitrymomot/resumekit/svc/aidraft"
	"github.com/dmitrymomot/resumekit/svc/resume"
)

// Mappings lists the domain errors with a dedicated status. First match wins,
// so an entitlement denial is never reported as a generic failure.
func Mappings() []handler.Mapping {
	return []handler.Mapping{
		handler.Map(subscription.ErrEntitlementDenied, http.StatusPaymentRequired, handler.ErrPaymentRequired.Key),
		handler.Map(subscription.ErrUnauthenticated, http.StatusUnauthorized, handler.ErrUnauthorized.Key),
		handler.Map(subscription.ErrSignatureVerification, http.StatusBadRequest, "invalid_signature"),
		handler.Map(subscription.ErrMalformedEvent, http.StatusBadRequest, "malformed_event"),
		handler.Map(subscription.ErrProviderUnavailable, http.StatusServiceUnavailable, handler.ErrServiceUnavailable.Key),
		handler.Map(subscription.ErrUnknownPrice, http.StatusUnprocessableEntity, "unknown_price"),
		handler.Map(subscription.ErrAlreadySubscribed, http.StatusConflict, "already_subscribed"),
		handler.Map(subscription.ErrInvalidSubscription, http.StatusInternalServerError, "invalid_subscription"),
		handler.Map(resume.ErrNotFound, http.StatusNotFound, handler.ErrNotFound.Key),
		handler.Map(aidraft.ErrModelUnavailable, http.StatusServiceUnavailable, handler.ErrServiceUnavailable.Key),
		handler.Map(aidraft.ErrEmptyCompletion, http.StatusBadGateway, "empty_completion"),
		handler.Map(ratelimiter.ErrLimitExceeded, http.StatusTooManyRequests, "rate_limited"),
		handler.Map(ratelimiter.ErrStoreUnavailable, http.StatusServiceUnavailable, handler.ErrServiceUnavailable.Key),
	}
}

// ErrorHandler is the handler.ErrorHandler shared by all modules.
func ErrorHandler(log *slog.Logger) handler.ErrorHandler[handler.Context] {
	return handler.NewErrorHandler(log, Mappings()...)
}

// Write renders err as a JSON error envelope outside of a typed handler,
// e.g. from middleware.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := handler.Classify(err, Mappings()...)
	_ = handler.JSONError(status, detail).Render(w, r)
}

// Unauthorized is a jwt.ErrorHandler that answers with a JSON 401.
func Unauthorized(w http.ResponseWriter, r *http.Request, _ error) {
	Write(w, r, subscription.ErrUnauthenticated)
}

var _ jwt.ErrorHandler = Unauthorized
